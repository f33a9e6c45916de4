// Package client -----------------------------
// @file      : client.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/17 14:10
// -------------------------------------------
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/oklog/ulid/v2"

	"redis-go-client/interface/resp"
	"redis-go-client/lib/metrics"
	"redis-go-client/pubsub"
	"redis-go-client/resp/parser"
	"redis-go-client/resp/reply"
)

const readBufferSize = 4096

// 让阻塞中的读写立即返回
var aLongTimeAgo = time.Unix(1, 0)

// request 已编码的一条命令
type request struct {
	name string
	cmd  *reply.MultiBulkReply
}

func newRequest(name string, args ...interface{}) (*request, error) {
	cmd, err := reply.MakeCommand(name, args...)
	if err != nil {
		return nil, err
	}
	return &request{name: strings.ToLower(name), cmd: cmd}, nil
}

// Client 一条到 redis 的连接，第一次执行命令时才建立
// 普通模式下由持有 connMu 的调用方读取回复
// 订阅模式下由 listener 协程读取，回复通过 channel 交给等待中的调用方
type Client struct {
	opts    Options
	id      string
	logger  hclog.Logger
	metrics *metrics.Metrics

	// 一次完整的请求-响应
	connMu sync.Mutex

	// 保护以下字段，不在 I/O 期间持有
	mu           sync.Mutex
	conn         net.Conn
	decoder      parser.Reader
	pipeline     bool
	pipelineReqs []*request
	subscription bool
	channels     map[string]struct{}
	patterns     map[string]struct{}
	listener     *listener
	queue        *pubsub.Queue
}

// MakeClient 解析连接串创建客户端，不会立即建立连接
func MakeClient(rawURL string, opts ...Option) (*Client, error) {
	o, err := OptionsFromURL(rawURL, opts...)
	if err != nil {
		return nil, err
	}
	return NewClient(o), nil
}

// NewClient opts 会被复制
func NewClient(opts *Options) *Client {
	c := &Client{
		opts:     *opts,
		id:       ulid.Make().String(),
		metrics:  opts.Metrics,
		decoder:  parser.NewReader(opts.ParserKind, opts.ParserOptions...),
		channels: make(map[string]struct{}),
		patterns: make(map[string]struct{}),
		queue:    pubsub.NewQueue(opts.PubSubQueueSize),
	}
	l := opts.Logger
	if l == nil {
		l = hclog.NewNullLogger()
	}
	c.logger = l.Named("client").With("conn", c.id, "addr", opts.endpoint())
	return c
}

// Execute 发送一条命令并等待回复
// 流水线模式下只缓存命令，返回 (nil, nil)
// 单个错误帧以 *ServerError 返回
func (c *Client) Execute(ctx context.Context, name string, args ...interface{}) (resp.Reply, error) {
	req, err := newRequest(name, args...)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.pipeline {
		c.pipelineReqs = append(c.pipelineReqs, req)
		c.mu.Unlock()
		return nil, nil
	}
	c.mu.Unlock()

	c.connMu.Lock()
	defer c.connMu.Unlock()
	start := time.Now()
	result, err := c.executeRequests(ctx, []*request{req})
	var r resp.Reply
	if err == nil {
		r, err = unwrapReplies(result)
	}
	c.metrics.ObserveCommand(req.name, start, err)
	return r, err
}

// unwrapReplies 一个回复直接返回，多个回复（例如订阅多个频道）合成一个数组
func unwrapReplies(replies []resp.Reply) (resp.Reply, error) {
	if len(replies) != 1 {
		return reply.MakeArrayReply(replies), nil
	}
	if errReply, ok := replies[0].(*reply.StandardErrReply); ok {
		return nil, &ServerError{Msg: errReply.Status}
	}
	return replies[0], nil
}

// PipelineOn 之后的命令只进入缓存
func (c *Client) PipelineOn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pipeline = true
}

func (c *Client) PipelineOff() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pipeline = false
}

// Pipeline 在 fn 执行期间开启流水线模式，缓存的命令需要 PipelineExecute 发送
func (c *Client) Pipeline(fn func() error) error {
	c.PipelineOn()
	defer c.PipelineOff()
	return fn()
}

// PipelineClear 丢弃缓存的命令
func (c *Client) PipelineClear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pipelineReqs = nil
}

// PipelineExecute 一次写出缓存的全部命令，按顺序返回回复，错误帧保留在结果中
// 无论成功与否缓存都会被清空
func (c *Client) PipelineExecute(ctx context.Context) ([]resp.Reply, error) {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	c.mu.Lock()
	reqs := c.pipelineReqs
	c.pipelineReqs = nil
	listening := c.listener != nil
	c.mu.Unlock()
	if listening {
		return nil, ErrPubSubMode
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	start := time.Now()
	replies, err := c.executeRequests(ctx, reqs)
	c.metrics.ObserveCommand("pipeline", start, err)
	return replies, err
}

func stringsToArgs(ss []string) []interface{} {
	args := make([]interface{}, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}

// Subscribe 第一次订阅后连接进入订阅模式，消息从 Messages() 读取
func (c *Client) Subscribe(ctx context.Context, channels ...string) (resp.Reply, error) {
	return c.Execute(ctx, "subscribe", stringsToArgs(channels)...)
}

func (c *Client) PSubscribe(ctx context.Context, patterns ...string) (resp.Reply, error) {
	return c.Execute(ctx, "psubscribe", stringsToArgs(patterns)...)
}

// Unsubscribe 没有参数时退订全部频道
func (c *Client) Unsubscribe(ctx context.Context, channels ...string) (resp.Reply, error) {
	return c.Execute(ctx, "unsubscribe", stringsToArgs(channels)...)
}

func (c *Client) PUnsubscribe(ctx context.Context, patterns ...string) (resp.Reply, error) {
	return c.Execute(ctx, "punsubscribe", stringsToArgs(patterns)...)
}

// Messages 当前订阅的消息队列，订阅结束后队列被关闭，下一次订阅使用新的队列
func (c *Client) Messages() *pubsub.Queue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue
}

func (c *Client) Subscribed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscription
}

// Close 停止 listener 并关闭连接，之后仍可继续使用，会重新建立连接
// 解码器归持有 connMu 的调用方所有，这里不重置，下次建立连接时重置
func (c *Client) Close() error {
	c.stopListener()
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return err
}

func (c *Client) String() string {
	return "Client[" + c.opts.endpoint() + "]"
}

// executeRequests 调用方持有 connMu
func (c *Client) executeRequests(ctx context.Context, reqs []*request) ([]resp.Reply, error) {
	conn, err := c.ensureConn(ctx)
	if err != nil {
		return nil, err
	}
	return c.exchange(ctx, conn, reqs)
}

func (c *Client) ensureConn(ctx context.Context) (net.Conn, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		return conn, nil
	}
	return c.openConnection(ctx)
}

// openConnection 建立连接并完成 AUTH 和 SELECT，失败时关闭连接
func (c *Client) openConnection(ctx context.Context) (net.Conn, error) {
	// 上一次订阅留下的 listener 必须先退出
	c.stopListener()
	c.mu.Lock()
	c.decoder.Reset()
	c.mu.Unlock()

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, c.connError(ctx, "dial", err)
	}
	c.metrics.IncConnects()
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if err := c.handshake(ctx, conn); err != nil {
		c.closeTransport(conn)
		return nil, err
	}
	c.logger.Debug("connection established")
	return conn, nil
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	d := c.opts.dialer()
	if c.opts.TLSConfig != nil {
		td := &tls.Dialer{NetDialer: d, Config: c.opts.TLSConfig}
		return td.DialContext(ctx, c.opts.network(), c.opts.Addr)
	}
	return d.DialContext(ctx, c.opts.network(), c.opts.Addr)
}

// handshake 每条命令单独往返
func (c *Client) handshake(ctx context.Context, conn net.Conn) error {
	if c.opts.Password != "" {
		args := []interface{}{c.opts.Password}
		if c.opts.Username != "" {
			args = []interface{}{c.opts.Username, c.opts.Password}
		}
		if err := c.roundTrip(ctx, conn, "auth", args...); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if c.opts.DB != 0 {
		if err := c.roundTrip(ctx, conn, "select", c.opts.DB); err != nil {
			return fmt.Errorf("select %d: %w", c.opts.DB, err)
		}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, conn net.Conn, name string, args ...interface{}) error {
	req, err := newRequest(name, args...)
	if err != nil {
		return err
	}
	replies, err := c.exchange(ctx, conn, []*request{req})
	if err != nil {
		return err
	}
	_, err = unwrapReplies(replies)
	return err
}

// exchange 写出全部命令再读取对应数量的回复
func (c *Client) exchange(ctx context.Context, conn net.Conn, reqs []*request) ([]resp.Reply, error) {
	var buf bytes.Buffer
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return nil, &ConnError{Op: "write", Addr: c.opts.Addr, Err: net.ErrClosed}
	}
	want := 0
	for _, req := range reqs {
		buf.Write(req.cmd.ToBytes())
		want += c.expectedReplies(req)
		if req.name == "subscribe" || req.name == "psubscribe" {
			c.subscription = true
		}
	}
	var result <-chan batchResult
	if c.subscription {
		// 从这里开始由 listener 读取连接
		if c.listener == nil {
			// 订阅期间可能长时间没有消息，不设置读超时
			// 必须在启动前清除，否则会覆盖 stop 设置的过期时间
			_ = conn.SetReadDeadline(time.Time{})
			c.listener = newListener(c, conn, c.queue)
			go c.listener.run()
		}
		result = c.listener.expect(want)
	}
	c.mu.Unlock()

	if err := c.write(ctx, conn, buf.Bytes()); err != nil {
		c.closeTransport(conn)
		return nil, err
	}
	var replies []resp.Reply
	var err error
	if result != nil {
		replies, err = c.await(ctx, result)
	} else {
		replies, err = c.read(ctx, conn, want)
	}
	if err != nil {
		c.closeTransport(conn)
		return nil, err
	}
	return replies, nil
}

// expectedReplies 订阅类命令每个频道一条确认，调用方持有 mu
func (c *Client) expectedReplies(req *request) int {
	n := len(req.cmd.Args) - 1
	switch req.name {
	case "subscribe", "psubscribe":
		return max(1, n)
	case "unsubscribe":
		if n > 0 {
			return n
		}
		return max(1, len(c.channels))
	case "punsubscribe":
		if n > 0 {
			return n
		}
		return max(1, len(c.patterns))
	}
	return 1
}

func (c *Client) write(ctx context.Context, conn net.Conn, b []byte) error {
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetWriteDeadline(aLongTimeAgo)
	})
	defer stop()
	var deadline time.Time
	if c.opts.WriteTimeout > 0 {
		deadline = time.Now().Add(c.opts.WriteTimeout)
	}
	_ = conn.SetWriteDeadline(deadline)
	if err := ctx.Err(); err != nil {
		return c.connError(ctx, "write", err)
	}
	if _, err := conn.Write(b); err != nil {
		return c.connError(ctx, "write", err)
	}
	return nil
}

// read 读取直到解码出 want 个顶层帧
func (c *Client) read(ctx context.Context, conn net.Conn, want int) ([]resp.Reply, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(aLongTimeAgo)
	})
	defer stop()
	buf := make([]byte, readBufferSize)
	replies := make([]resp.Reply, 0, want)
	for {
		for {
			frame, ok := c.decoder.Gets()
			if !ok {
				break
			}
			replies = append(replies, frame)
		}
		if len(replies) >= want {
			break
		}
		var deadline time.Time
		if c.opts.ReadTimeout > 0 {
			deadline = time.Now().Add(c.opts.ReadTimeout)
		}
		_ = conn.SetReadDeadline(deadline)
		if err := ctx.Err(); err != nil {
			return nil, c.connError(ctx, "read", err)
		}
		n, err := conn.Read(buf)
		if n > 0 {
			if ferr := c.decoder.Feed(buf[:n]); ferr != nil {
				return nil, ferr
			}
		}
		if err != nil {
			return nil, c.connError(ctx, "read", err)
		}
	}
	if len(replies) > want {
		return nil, &parser.ProtocolError{Msg: fmt.Sprintf("expected %d replies, got %d", want, len(replies))}
	}
	return replies, nil
}

// await 等待 listener 交回本批次的回复
func (c *Client) await(ctx context.Context, result <-chan batchResult) ([]resp.Reply, error) {
	var timeout <-chan time.Time
	if c.opts.ReadTimeout > 0 {
		timer := time.NewTimer(c.opts.ReadTimeout)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case r := <-result:
		return r.replies, r.err
	case <-timeout:
		return nil, &ConnError{Op: "read", Addr: c.opts.Addr, Err: ErrTimeout}
	case <-ctx.Done():
		return nil, &ConnError{Op: "read", Addr: c.opts.Addr, Err: ctx.Err()}
	}
}

// closeTransport 出错后关闭连接，下一次执行命令时重新建立
func (c *Client) closeTransport(conn net.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		return
	}
	c.conn = nil
	_ = conn.Close()
	// listener 存在时解码器归它所有，由它退出时重置
	if c.listener == nil {
		c.decoder.Reset()
	}
	c.logger.Debug("connection closed")
}

// waitListener 等待订阅结束，ctx 先结束时返回 ctx.Err()
func (c *Client) waitListener(ctx context.Context) error {
	c.mu.Lock()
	l := c.listener
	c.mu.Unlock()
	if l == nil {
		return nil
	}
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) stopListener() {
	c.mu.Lock()
	l := c.listener
	c.mu.Unlock()
	if l != nil {
		l.stop()
	}
}

// resetSubscription 调用方持有 mu
func (c *Client) resetSubscription() {
	c.subscription = false
	c.channels = make(map[string]struct{})
	c.patterns = make(map[string]struct{})
	c.queue = pubsub.NewQueue(c.opts.PubSubQueueSize)
}

func (c *Client) connError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
		err = ErrTimeout
	}
	return &ConnError{Op: op, Addr: c.opts.Addr, Err: err}
}
