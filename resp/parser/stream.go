// Package parser -----------------------------
// @file      : stream.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2023/12/23 20:43
// -------------------------------------------
package parser

import (
	"bufio"
	"errors"
	"io"
	"redis-go-client/interface/resp"
	"redis-go-client/resp/reply"
)

// feeder 解析协程读取的数据源
// 没有数据时通知 idle 并挂起，直到 Feed 送来下一块
type feeder struct {
	in      <-chan []byte
	idle    chan<- struct{}
	pending []byte
}

func (f *feeder) Read(p []byte) (int, error) {
	for len(f.pending) == 0 {
		f.idle <- struct{}{}
		chunk, ok := <-f.in
		if !ok {
			return 0, io.EOF
		}
		f.pending = chunk
	}
	n := copy(p, f.pending)
	f.pending = f.pending[n:]
	return n, nil
}

// streamReader 一个解析协程对应一个连接，解析进度保存在协程的调用栈上
// ready partial err 只在解析协程挂起时被调用方访问
type streamReader struct {
	opts    options
	started bool
	in      chan []byte
	idle    chan struct{}
	exited  chan struct{}

	ready   []resp.Reply
	partial bool
	err     error
}

func newStreamReader(o options) *streamReader {
	return &streamReader{opts: o}
}

// start 协程惰性启动，Reset 之后不留下任何协程
func (r *streamReader) start() {
	r.in = make(chan []byte)
	r.idle = make(chan struct{})
	r.exited = make(chan struct{})
	r.started = true
	go r.parse0(&feeder{in: r.in, idle: r.idle})
	// 等待解析协程第一次挂起
	select {
	case <-r.idle:
	case <-r.exited:
	}
}

func (r *streamReader) Feed(data []byte) error {
	if r.err != nil {
		return r.err
	}
	if len(data) == 0 {
		return nil
	}
	if !r.started {
		r.start()
	}
	select {
	case r.in <- data:
	case <-r.exited:
		return r.err
	}
	// 协程消费完这块数据后重新挂起
	select {
	case <-r.idle:
	case <-r.exited:
	}
	return r.err
}

// parse0 解析器
func (r *streamReader) parse0(src io.Reader) {
	defer close(r.exited)
	// 防止出现异常导致 Feed 永远等待
	defer func() {
		if e := recover(); e != nil {
			r.err = protocolError("parser panic: %v", e)
		}
	}()
	bufReader := bufio.NewReaderSize(src, r.opts.maxLineLength)
	for {
		// Peek 返回说明新帧的第一个字节已经到达
		if _, err := bufReader.Peek(1); err != nil {
			return
		}
		r.partial = true
		frame, err := r.readFrame(bufReader)
		if err != nil {
			// 输入被关闭 (Reset) 时不算错误
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				r.err = err
			}
			return
		}
		r.partial = false
		r.ready = append(r.ready, frame)
	}
}

// readFrame 递归读取一个完整的帧
func (r *streamReader) readFrame(bufReader *bufio.Reader) (resp.Reply, error) {
	line, err := readLine(bufReader)
	if err != nil {
		return nil, err
	}
	h, err := parseHeader(line, &r.opts)
	if err != nil {
		return nil, err
	}
	if h.frame != nil {
		return h.frame, nil
	}
	switch h.typ {
	case '$':
		// 严格读取字符个数（字符串中可能包含\r\n）
		msg := make([]byte, h.n+2)
		if _, err := io.ReadFull(bufReader, msg); err != nil {
			return nil, err
		}
		if msg[h.n] != '\r' || msg[h.n+1] != '\n' {
			return nil, protocolError("bulk string of length %d not terminated by CRLF", h.n)
		}
		return reply.MakeBulkReply(msg[:h.n]), nil
	case '*':
		items := make([]resp.Reply, 0, arrayCap(h.n))
		for i := int64(0); i < h.n; i++ {
			item, err := r.readFrame(bufReader)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return reply.MakeArrayReply(items), nil
	}
	return nil, protocolError("unknown reply type %q", h.typ)
}

// readLine 读取以 \r\n 结尾的一行，返回的切片不包含 \r\n，只在下一次读取前有效
func readLine(bufReader *bufio.Reader) ([]byte, error) {
	msg, err := bufReader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		return nil, protocolError("line exceeds %d bytes", bufReader.Size())
	}
	if err != nil {
		return nil, err
	}
	// 如果 \n 前面不是 \r 表示协议错误
	if len(msg) < 2 || msg[len(msg)-2] != '\r' {
		return nil, protocolError("line not terminated by CRLF: %q", msg)
	}
	return msg[:len(msg)-2], nil
}

func (r *streamReader) Gets() (resp.Reply, bool) {
	if len(r.ready) == 0 {
		return nil, false
	}
	frame := r.ready[0]
	r.ready[0] = nil
	r.ready = r.ready[1:]
	return frame, true
}

func (r *streamReader) HasPending() bool {
	return len(r.ready) > 0 || r.partial
}

func (r *streamReader) Reset() {
	if r.started {
		close(r.in)
		<-r.exited
		r.started = false
	}
	r.ready = nil
	r.partial = false
	r.err = nil
}
