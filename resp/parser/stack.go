// Package parser -----------------------------
// @file      : stack.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/16 21:05
// -------------------------------------------
package parser

import (
	"bytes"
	"redis-go-client/interface/resp"
	"redis-go-client/resp/reply"
)

// arrayContext 一层未完成的数组
type arrayContext struct {
	want  int
	items []resp.Reply
}

// stackReader 显式状态机
// buf 里只保存尚未消费的字节，已完成的数组元素保存在 stack 里不会被重复解析
type stackReader struct {
	opts  options
	buf   []byte
	stack []*arrayContext
	ready []resp.Reply
	err   error
}

func newStackReader(o options) *stackReader {
	return &stackReader{opts: o}
}

func (r *stackReader) Feed(data []byte) error {
	if r.err != nil {
		return r.err
	}
	if len(data) == 0 {
		return nil
	}
	r.buf = append(r.buf, data...)
	for len(r.buf) > 0 {
		frame, n, err := r.next()
		if err != nil {
			r.err = err
			return err
		}
		// 数据不完整，等待下一次 Feed
		if n == 0 {
			break
		}
		r.buf = r.buf[n:]
		if frame != nil {
			r.emit(frame)
		}
	}
	if len(r.buf) == 0 {
		r.buf = nil
	}
	return nil
}

// next 解析 buf 开头的一个元素，返回消费的字节数
// 数组头只压栈，不产生帧
func (r *stackReader) next() (resp.Reply, int, error) {
	// 行长度包括结尾的 \r\n
	lf := bytes.IndexByte(r.buf, '\n')
	if lf < 0 {
		if len(r.buf) >= r.opts.maxLineLength {
			return nil, 0, protocolError("line exceeds %d bytes", r.opts.maxLineLength)
		}
		return nil, 0, nil
	}
	if lf+1 > r.opts.maxLineLength {
		return nil, 0, protocolError("line exceeds %d bytes", r.opts.maxLineLength)
	}
	if lf == 0 || r.buf[lf-1] != '\r' {
		return nil, 0, protocolError("line not terminated by CRLF: %q", r.buf[:lf+1])
	}
	end := lf - 1
	h, err := parseHeader(r.buf[:end], &r.opts)
	if err != nil {
		return nil, 0, err
	}
	consumed := end + 2
	if h.frame != nil {
		return h.frame, consumed, nil
	}
	switch h.typ {
	case '$':
		need := consumed + int(h.n) + 2
		if len(r.buf) < need {
			return nil, 0, nil
		}
		if !bytes.Equal(r.buf[need-2:need], crlf) {
			return nil, 0, protocolError("bulk string of length %d not terminated by CRLF", h.n)
		}
		body := make([]byte, h.n)
		copy(body, r.buf[consumed:need-2])
		return reply.MakeBulkReply(body), need, nil
	case '*':
		r.stack = append(r.stack, &arrayContext{
			want:  int(h.n),
			items: make([]resp.Reply, 0, arrayCap(h.n)),
		})
		return nil, consumed, nil
	}
	return nil, 0, protocolError("unknown reply type %q", h.typ)
}

// emit 把完成的元素挂到栈顶数组，数组满了就出栈继续向上
func (r *stackReader) emit(frame resp.Reply) {
	for len(r.stack) > 0 {
		top := r.stack[len(r.stack)-1]
		top.items = append(top.items, frame)
		if len(top.items) < top.want {
			return
		}
		r.stack[len(r.stack)-1] = nil
		r.stack = r.stack[:len(r.stack)-1]
		frame = reply.MakeArrayReply(top.items)
	}
	r.ready = append(r.ready, frame)
}

func (r *stackReader) Gets() (resp.Reply, bool) {
	if len(r.ready) == 0 {
		return nil, false
	}
	frame := r.ready[0]
	r.ready[0] = nil
	r.ready = r.ready[1:]
	return frame, true
}

func (r *stackReader) HasPending() bool {
	return len(r.ready) > 0 || len(r.buf) > 0 || len(r.stack) > 0
}

func (r *stackReader) Reset() {
	r.buf = nil
	r.stack = nil
	r.ready = nil
	r.err = nil
}
