// Package resp -----------------------------
// @file      : reply.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2023/12/23 12:50
// -------------------------------------------
package resp

import "context"

// Reply 是 RESP 协议中的一个帧，ToBytes 返回其规范编码
type Reply interface {
	ToBytes() []byte
}

// Executor 执行一条命令并返回其回复
type Executor interface {
	Execute(ctx context.Context, name string, args ...interface{}) (Reply, error)
}
