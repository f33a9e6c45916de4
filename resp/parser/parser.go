// Package parser -----------------------------
// @file      : parser.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2023/12/23 20:43
// -------------------------------------------
package parser

import (
	"errors"
	"fmt"
	"redis-go-client/interface/resp"
	"redis-go-client/resp/reply"
	"strconv"
)

// Reader 增量解码器，字节流可以按任意大小分块喂入
// Feed 喂入字节并尽可能多地解析出完整的顶层帧
// Gets 按顺序取出一个已解析完成的帧
// HasPending 还有已解析的帧或者解析到一半的数据
// Reset 丢弃全部状态，连接重建时调用
type Reader interface {
	Feed(data []byte) error
	Gets() (resp.Reply, bool)
	HasPending() bool
	Reset()
}

// Kind 解码器实现
type Kind string

const (
	// KindStack 显式状态机，数组嵌套用栈记录
	KindStack Kind = "stack"
	// KindStream 解析协程挂起在内部的 io.Reader 上，调用栈即解析状态
	KindStream Kind = "stream"
)

const (
	// DefaultMaxBulkLength 与 redis 的 proto-max-bulk-len 一致
	DefaultMaxBulkLength = 512 * 1024 * 1024
	// DefaultMaxLineLength 单行 (类型 + 长度或简单字符串) 的上限
	DefaultMaxLineLength = 64 * 1024
)

var crlf = []byte("\r\n")

const minLineLength = 16

// ParseKind "" 视为 stack
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", KindStack:
		return KindStack, nil
	case KindStream:
		return KindStream, nil
	}
	return "", fmt.Errorf("unknown parser kind %q", s)
}

type options struct {
	maxBulkLength int64
	maxLineLength int
}

type Option func(*options)

func WithMaxBulkLength(n int64) Option {
	return func(o *options) {
		o.maxBulkLength = n
	}
}

func WithMaxLineLength(n int) Option {
	return func(o *options) {
		o.maxLineLength = n
	}
}

// NewReader 创建指定实现的解码器
func NewReader(kind Kind, opts ...Option) Reader {
	o := options{
		maxBulkLength: DefaultMaxBulkLength,
		maxLineLength: DefaultMaxLineLength,
	}
	for _, opt := range opts {
		opt(&o)
	}
	// bufio.Reader 的缓冲最小为 16 字节，两种实现使用同一个下限
	if o.maxLineLength < minLineLength {
		o.maxLineLength = minLineLength
	}
	if kind == KindStream {
		return newStreamReader(o)
	}
	return newStackReader(o)
}

// ParseOne 解析一段完整的字节，返回第一个帧
func ParseOne(data []byte) (resp.Reply, error) {
	r := NewReader(KindStack)
	if err := r.Feed(data); err != nil {
		return nil, err
	}
	frame, ok := r.Gets()
	if !ok {
		return nil, errors.New("no protocol")
	}
	return frame, nil
}

// ProtocolError 字节流不符合 RESP 协议，连接无法继续使用
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Msg
}

func protocolError(format string, args ...interface{}) error {
	return &ProtocolError{Msg: fmt.Sprintf(format, args...)}
}

// header 一行解析的结果
// 单行帧和空值直接得到 frame，bulk 和数组只得到长度 n
type header struct {
	typ   byte
	n     int64
	frame resp.Reply
}

// parseHeader line 不包含末尾的 \r\n
func parseHeader(line []byte, o *options) (header, error) {
	if len(line) == 0 {
		return header{}, protocolError("empty line")
	}
	h := header{typ: line[0]}
	body := string(line[1:])
	switch h.typ {
	case '+':
		h.frame = reply.MakeStatusReply(body)
	case '-':
		h.frame = reply.MakeErrReply(body)
	case ':':
		v, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return h, protocolError("invalid integer %q", body)
		}
		h.frame = reply.MakeIntReply(v)
	case '$':
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil || n < -1 {
			return h, protocolError("invalid bulk length %q", body)
		}
		if n > o.maxBulkLength {
			return h, protocolError("bulk length %d exceeds %d", n, o.maxBulkLength)
		}
		if n == -1 {
			h.frame = reply.MakeNullBulkReply()
		}
		h.n = n
	case '*':
		n, err := strconv.ParseInt(body, 10, 32)
		if err != nil || n < -1 {
			return h, protocolError("invalid array length %q", body)
		}
		switch n {
		case -1:
			h.frame = reply.MakeNullArrayReply()
		case 0:
			h.frame = reply.MakeArrayReply([]resp.Reply{})
		}
		h.n = n
	default:
		return h, protocolError("unknown reply type %q", h.typ)
	}
	return h, nil
}

// arrayCap 预分配上限，长度来自对端不可信
func arrayCap(n int64) int {
	if n > 1024 {
		return 1024
	}
	return int(n)
}
