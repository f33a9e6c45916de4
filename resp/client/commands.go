// Package client -----------------------------
// @file      : commands.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/21 10:40
// -------------------------------------------
package client

import (
	"context"

	"redis-go-client/interface/resp"
	"redis-go-client/resp/reply"
)

// Commands 常用命令的类型化封装，可以包装 *Client 或 *PooledClient
// 流水线模式下命令只进入缓存，返回零值
type Commands struct {
	e resp.Executor
}

func NewCommands(e resp.Executor) *Commands {
	return &Commands{e: e}
}

func (c *Commands) Ping(ctx context.Context) (string, error) {
	r, err := c.e.Execute(ctx, "ping")
	if err != nil {
		return "", err
	}
	return reply.String(r)
}

func (c *Commands) Echo(ctx context.Context, message string) (string, error) {
	r, err := c.e.Execute(ctx, "echo", message)
	if err != nil {
		return "", err
	}
	return reply.String(r)
}

// Get key 不存在时 ok 为 false
func (c *Commands) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	r, err := c.e.Execute(ctx, "get", key)
	if err != nil || r == nil || reply.IsNull(r) {
		return nil, false, err
	}
	value, err = reply.Bytes(r)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *Commands) Set(ctx context.Context, key string, value interface{}) error {
	_, err := c.e.Execute(ctx, "set", key, value)
	return err
}

func (c *Commands) Del(ctx context.Context, keys ...string) (int64, error) {
	r, err := c.e.Execute(ctx, "del", stringsToArgs(keys)...)
	if err != nil {
		return 0, err
	}
	return reply.Int64(r)
}

func (c *Commands) Exists(ctx context.Context, keys ...string) (int64, error) {
	r, err := c.e.Execute(ctx, "exists", stringsToArgs(keys)...)
	if err != nil {
		return 0, err
	}
	return reply.Int64(r)
}

func (c *Commands) Incr(ctx context.Context, key string) (int64, error) {
	r, err := c.e.Execute(ctx, "incr", key)
	if err != nil {
		return 0, err
	}
	return reply.Int64(r)
}

// Publish 返回收到消息的订阅者数量
func (c *Commands) Publish(ctx context.Context, channel string, message interface{}) (int64, error) {
	r, err := c.e.Execute(ctx, "publish", channel, message)
	if err != nil {
		return 0, err
	}
	return reply.Int64(r)
}
