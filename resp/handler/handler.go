// Package handler -----------------------------
// @file      : handler.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/3 11:20
// -------------------------------------------
package handler

import (
	"context"
	"errors"
	"io"
	"net"
	databseinterface "redis-go-client/interface/database"
	"redis-go-client/lib/logger"
	"redis-go-client/lib/sync/atomic"
	"redis-go-client/resp/connection"
	"redis-go-client/resp/parser"
	"redis-go-client/resp/reply"
	"strings"
	"sync"
)

const readBufferSize = 4096

var (
	unknownErrReplyBytes = []byte("-ERR unknown\r\n")
)

type RespHandler struct {
	// 记录协议层保持连接的用户信息
	activeConn sync.Map
	db         databseinterface.Database
	// 并发安全的 bool
	closing atomic.Boolean
}

func MakeHandler(db databseinterface.Database) *RespHandler {
	return &RespHandler{
		db: db,
	}
}

// 关闭一个客户端的连接
func (r *RespHandler) closeClient(client *connection.Connection) {
	_ = client.Close()
	// 客户端关闭后数据库需要做的一些善后操作
	r.db.AfterClientClose(client)
	r.activeConn.Delete(client)
}

// Handle 处理 TCP 连接
func (r *RespHandler) Handle(ctx context.Context, conn net.Conn) {
	if r.closing.Get() {
		_ = conn.Close()
		return
	}
	// TCP 的连接包装为协议层的连接
	client := connection.NewConn(conn)
	r.activeConn.Store(client, struct{}{})
	defer func() {
		r.closeClient(client)
		logger.Debug("connection closed", "remote", conn.RemoteAddr().String())
	}()

	decoder := parser.NewReader(parser.KindStack)
	buf := make([]byte, readBufferSize)
	for {
		for {
			frame, ok := decoder.Gets()
			if !ok {
				break
			}
			args, ok := reply.ToArgs(frame)
			if !ok || len(args) == 0 {
				logger.Warn("require multi bulk reply to exec")
				_ = client.Write(unknownErrReplyBytes)
				continue
			}
			result := r.db.Exec(client, args)
			if result != nil {
				// 订阅类命令自己写回复，返回 NoReply
				_ = client.Write(result.ToBytes())
			} else {
				_ = client.Write(unknownErrReplyBytes)
			}
			if strings.EqualFold(string(args[0]), "quit") {
				return
			}
		}
		n, err := conn.Read(buf)
		if n > 0 {
			if ferr := decoder.Feed(buf[:n]); ferr != nil {
				// 协议错误之后无法再定位帧的边界，回复错误并断开
				errReply := &reply.ProtocolErrReply{Msg: ferr.Error()}
				_ = client.Write(errReply.ToBytes())
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.Warn("read failed", "remote", conn.RemoteAddr().String(), "error", err)
			}
			return
		}
	}
}

// Close 关闭整个 handler
func (r *RespHandler) Close() error {
	if !r.closing.CompareAndSet(false, true) {
		return nil
	}
	logger.Info("handler shutting down ...")
	// 逐步断开每个客户端的连接
	r.activeConn.Range(
		func(key interface{}, value interface{}) bool {
			client := key.(*connection.Connection)
			_ = client.Close()
			return true
		})
	r.db.Close()
	return nil
}
