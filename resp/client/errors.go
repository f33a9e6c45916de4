// Package client -----------------------------
// @file      : errors.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/18 10:20
// -------------------------------------------
package client

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
)

var (
	// ErrTimeout 读写超时，可以用 errors.Is 判断
	ErrTimeout = errors.New("i/o timeout")
	// ErrPubSubMode 订阅模式下不能执行流水线
	ErrPubSubMode = errors.New("connection is in pub/sub mode")
	// ErrUnsupportedCommand 连接池不支持依赖会话状态的命令
	ErrUnsupportedCommand = errors.New("command is not supported by pooled client")
	// ErrActivePubSub 归还连接时仍处于订阅模式
	ErrActivePubSub = errors.New("closing client because of active pub/sub")
)

// ConnError 建立连接或者读写时出错，连接已被关闭
type ConnError struct {
	Op   string
	Addr string
	Err  error
}

func (e *ConnError) Error() string {
	return "redis " + e.Op + " " + e.Addr + ": " + e.Err.Error()
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

func (e *ConnError) Timeout() bool {
	if errors.Is(e.Err, ErrTimeout) || errors.Is(e.Err, context.DeadlineExceeded) || errors.Is(e.Err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

func (e *ConnError) Is(target error) bool {
	return target == ErrTimeout && e.Timeout()
}

// ServerError 服务端返回的错误帧
type ServerError struct {
	Msg string
}

func (e *ServerError) Error() string {
	return e.Msg
}

// Prefix 错误码，例如 ERR WRONGTYPE NOAUTH
func (e *ServerError) Prefix() string {
	prefix, _, _ := strings.Cut(e.Msg, " ")
	return prefix
}
