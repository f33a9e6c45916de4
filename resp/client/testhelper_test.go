// Package client -----------------------------
// @file      : testhelper_test.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/24 09:30
// -------------------------------------------
package client

import (
	"context"
	"net"
	"testing"
	"time"

	"redis-go-client/database"
	"redis-go-client/lib/config"
	"redis-go-client/resp/handler"
	"redis-go-client/tcp"
)

const testTimeout = 2 * time.Second

// startServer 在随机端口上启动开发服务器，测试结束时关闭
func startServer(t *testing.T, props *config.ServerProperties) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	closeChan := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		tcp.ListenAndServe(ln, handler.MakeHandler(database.NewStandaloneDatabase(props)), closeChan)
	}()
	t.Cleanup(func() {
		close(closeChan)
		<-done
	})
	return ln.Addr().String()
}

func newTestClient(t *testing.T, rawURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithTimeout(testTimeout)}, opts...)
	c, err := MakeClient(rawURL, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})
	return c
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
