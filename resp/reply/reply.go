// Package reply -----------------------------
// @file      : reply.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2023/12/23 12:55
// -------------------------------------------
package reply

import (
	"bytes"
	"redis-go-client/interface/resp"
	"strconv"
)

var (
	nullBulkReplyBytes = []byte("$-1")
	CRLF               = "\r\n"
)

/* ---- Bulk Reply ---- */

// BulkReply 二进制安全的字符串，nil 和空切片都编码为 "$0"，空值用 NullBulkReply 表示
type BulkReply struct {
	Arg []byte
}

func (b *BulkReply) ToBytes() []byte {
	// "hcjjj" → "$5\r\nhcjjj\r\n"
	return []byte("$" + strconv.Itoa(len(b.Arg)) + CRLF + string(b.Arg) + CRLF)
}

func MakeBulkReply(arg []byte) *BulkReply {
	return &BulkReply{
		Arg: arg,
	}
}

/* ---- Multi Bulk Reply ---- */

// MultiBulkReply 二维的参数回复，用于编码命令和推送消息，nil 元素编码为 "$-1"
type MultiBulkReply struct {
	Args [][]byte
}

func (r *MultiBulkReply) ToBytes() []byte {
	argLen := len(r.Args)
	// 拼接多个字符串再输出为字节
	var buf bytes.Buffer
	buf.WriteString("*" + strconv.Itoa(argLen) + CRLF)
	for _, arg := range r.Args {
		if arg == nil {
			buf.WriteString(string(nullBulkReplyBytes) + CRLF)
		} else {
			buf.WriteString("$" + strconv.Itoa(len(arg)) + CRLF)
			buf.Write(arg)
			buf.WriteString(CRLF)
		}
	}
	return buf.Bytes()
}

func MakeMultiBulkReply(arg [][]byte) *MultiBulkReply {
	return &MultiBulkReply{Args: arg}
}

/* ---- Array Reply ---- */

// ArrayReply 任意帧组成的数组，解码器产出的数组都是这个类型
type ArrayReply struct {
	Items []resp.Reply
}

func (r *ArrayReply) ToBytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("*" + strconv.Itoa(len(r.Items)) + CRLF)
	for _, item := range r.Items {
		buf.Write(item.ToBytes())
	}
	return buf.Bytes()
}

func MakeArrayReply(items []resp.Reply) *ArrayReply {
	return &ArrayReply{Items: items}
}

/* ---- Status Reply ---- */

// StatusReply stores a simple status string
type StatusReply struct {
	Status string
}

// ToBytes marshal redis.Reply
func (r *StatusReply) ToBytes() []byte {
	return []byte("+" + r.Status + CRLF)
}

// MakeStatusReply creates StatusReply
func MakeStatusReply(status string) *StatusReply {
	return &StatusReply{
		Status: status,
	}
}

/* ---- Int Reply ---- */

// IntReply stores an int64 number
type IntReply struct {
	Code int64
}

// MakeIntReply creates int protocol
func MakeIntReply(code int64) *IntReply {
	return &IntReply{
		Code: code,
	}
}

// ToBytes marshal redis.Reply
func (r *IntReply) ToBytes() []byte {
	// int64 → string
	return []byte(":" + strconv.FormatInt(r.Code, 10) + CRLF)
}

/* ---- Err Reply ---- */

// StandardErrReply represents server error
type StandardErrReply struct {
	Status string
}

func (r *StandardErrReply) ToBytes() []byte {
	return []byte("-" + r.Status + CRLF)
}

func (r *StandardErrReply) Error() string {
	return r.Status
}

// MakeErrReply creates StandardErrReply
func MakeErrReply(status string) *StandardErrReply {
	return &StandardErrReply{
		Status: status,
	}
}

// IsErrReply 判断是否为错误帧
func IsErrReply(reply resp.Reply) bool {
	b := reply.ToBytes()
	return len(b) > 0 && b[0] == '-'
}

type ErrorReply interface {
	Error() string
	ToBytes() []byte
}

// Equal 两个帧的编码相同即相等
func Equal(a, b resp.Reply) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return bytes.Equal(a.ToBytes(), b.ToBytes())
}
