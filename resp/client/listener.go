// Package client -----------------------------
// @file      : listener.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/19 16:25
// -------------------------------------------
package client

import (
	"context"
	"errors"
	"net"
	"sync"

	"redis-go-client/interface/resp"
	"redis-go-client/pubsub"
	"redis-go-client/resp/reply"
)

type batchResult struct {
	replies []resp.Reply
	err     error
}

// batch 一次请求等待的回复
type batch struct {
	want    int
	replies []resp.Reply
	result  chan batchResult
}

// listener 订阅模式下独占连接的读取，推送消息进入队列，其余帧交给等待中的调用方
type listener struct {
	c      *Client
	conn   net.Conn
	queue  *pubsub.Queue
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	pending *batch
}

func newListener(c *Client, conn net.Conn, queue *pubsub.Queue) *listener {
	ctx, cancel := context.WithCancel(context.Background())
	return &listener{
		c:      c,
		conn:   conn,
		queue:  queue,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// expect 登记下一批回复，调用方持有 c.mu
func (l *listener) expect(want int) <-chan batchResult {
	b := &batch{
		want:   want,
		result: make(chan batchResult, 1),
	}
	l.mu.Lock()
	l.pending = b
	l.mu.Unlock()
	return b.result
}

// stop 取消 listener 并等待退出
func (l *listener) stop() {
	l.cancel()
	_ = l.conn.SetReadDeadline(aLongTimeAgo)
	<-l.done
}

func (l *listener) run() {
	defer close(l.done)
	err := l.loop()
	if err == nil {
		return
	}
	c := l.c
	c.mu.Lock()
	if c.listener == l {
		c.resetSubscription()
		c.listener = nil
	}
	if c.conn == l.conn {
		c.conn = nil
	}
	_ = l.conn.Close()
	c.decoder.Reset()
	c.mu.Unlock()

	if errors.Is(err, context.Canceled) {
		l.queue.Close(nil)
		l.fail(&ConnError{Op: "read", Addr: c.opts.Addr, Err: context.Canceled})
		return
	}
	c.logger.Error("pub/sub listener stopped", "error", err)
	l.queue.Close(err)
	l.fail(err)
}

// loop 订阅正常结束时返回 nil
func (l *listener) loop() error {
	buf := make([]byte, readBufferSize)
	decoder := l.c.decoder
	for {
		for {
			frame, ok := decoder.Gets()
			if !ok {
				break
			}
			done, err := l.handle(frame)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
		// stop 先取消再设置过期时间，检查之后的 Read 会立即返回
		if err := l.ctx.Err(); err != nil {
			return err
		}
		n, err := l.conn.Read(buf)
		if n > 0 {
			if ferr := decoder.Feed(buf[:n]); ferr != nil {
				return ferr
			}
		}
		if err != nil {
			if ctxErr := l.ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return &ConnError{Op: "read", Addr: l.c.opts.Addr, Err: err}
		}
	}
}

// handle 处理一个帧，返回 true 表示订阅已经全部结束
func (l *listener) handle(frame resp.Reply) (bool, error) {
	if msg, ok := pubsub.ParseMessage(frame); ok {
		if err := l.queue.Put(l.ctx, msg); err != nil {
			return false, err
		}
		l.c.metrics.IncMessages()
		return false, nil
	}
	// 订阅模式下 PING 的回复是 ["pong", ""]
	if arr, ok := frame.(*reply.ArrayReply); ok && len(arr.Items) == 2 {
		if bulk, ok := arr.Items[1].(*reply.BulkReply); ok && len(bulk.Arg) == 0 {
			l.deliver(arr.Items[0], false)
			return false, nil
		}
	}
	if kind, name, count, ok := parseAck(frame); ok {
		l.track(kind, name)
		if (kind == "unsubscribe" || kind == "punsubscribe") && count == 0 {
			l.finish(frame)
			return true, nil
		}
	}
	l.deliver(frame, false)
	return false, nil
}

// parseAck [kind, name, count]，全部退订时 name 为空值
func parseAck(frame resp.Reply) (kind string, name []byte, count int64, ok bool) {
	arr, isArr := frame.(*reply.ArrayReply)
	if !isArr || len(arr.Items) != 3 {
		return "", nil, 0, false
	}
	kindBulk, isBulk := arr.Items[0].(*reply.BulkReply)
	if !isBulk {
		return "", nil, 0, false
	}
	switch string(kindBulk.Arg) {
	case "subscribe", "psubscribe", "unsubscribe", "punsubscribe":
	default:
		return "", nil, 0, false
	}
	switch item := arr.Items[1].(type) {
	case *reply.BulkReply:
		name = append([]byte{}, item.Arg...)
	default:
		if !reply.IsNull(item) {
			return "", nil, 0, false
		}
	}
	n, isInt := arr.Items[2].(*reply.IntReply)
	if !isInt {
		return "", nil, 0, false
	}
	return string(kindBulk.Arg), name, n.Code, true
}

func (l *listener) track(kind string, name []byte) {
	if name == nil {
		return
	}
	c := l.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listener != l {
		return
	}
	switch kind {
	case "subscribe":
		c.channels[string(name)] = struct{}{}
	case "psubscribe":
		c.patterns[string(name)] = struct{}{}
	case "unsubscribe":
		delete(c.channels, string(name))
	case "punsubscribe":
		delete(c.patterns, string(name))
	}
}

// finish 最后一个退订确认，把连接交还给普通模式
func (l *listener) finish(frame resp.Reply) {
	rest := make([]resp.Reply, 0)
	for {
		r, ok := l.c.decoder.Gets()
		if !ok {
			break
		}
		rest = append(rest, r)
	}
	c := l.c
	c.mu.Lock()
	if c.listener == l {
		c.resetSubscription()
		c.listener = nil
	}
	c.mu.Unlock()
	l.queue.Close(nil)

	l.deliver(frame, len(rest) == 0)
	for i, r := range rest {
		l.deliver(r, i == len(rest)-1)
	}
}

// deliver 凑齐一批后交给调用方，force 时不管数量直接交付
func (l *listener) deliver(frame resp.Reply, force bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.pending
	if b == nil {
		return
	}
	b.replies = append(b.replies, frame)
	if force || len(b.replies) >= b.want {
		l.pending = nil
		b.result <- batchResult{replies: b.replies}
	}
}

func (l *listener) fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b := l.pending; b != nil {
		l.pending = nil
		b.result <- batchResult{err: err}
	}
}
