// Package tcp -----------------------------
// @file      : handler.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2023/12/15 19:30
// -------------------------------------------
package tcp

import (
	"context"
	"net"
)

// Handler 处理一个 tcp 连接上的全部请求
type Handler interface {
	Handle(ctx context.Context, conn net.Conn)
	Close() error
}
