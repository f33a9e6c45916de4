// Package handler -----------------------------
// @file      : handler_test.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/24 18:00
// -------------------------------------------
package handler

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"testing"

	"redis-go-client/database"
)

func TestHandle(t *testing.T) {
	h := MakeHandler(database.NewStandaloneDatabase(nil))
	server, client := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Handle(context.Background(), server)
	}()
	t.Cleanup(func() {
		_ = client.Close()
		<-done
		_ = h.Close()
	})
	r := bufio.NewReader(client)

	exchange := func(req string) string {
		t.Helper()
		if _, err := client.Write([]byte(req)); err != nil {
			t.Fatal(err)
		}
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatal(err)
		}
		return line
	}

	if got := exchange("*1\r\n$4\r\nPING\r\n"); got != "+PONG\r\n" {
		t.Errorf("ping: %q", got)
	}
	if got := exchange("*3\r\n$3\r\nset\r\n$1\r\nk\r\n$1\r\nv\r\n"); got != "+OK\r\n" {
		t.Errorf("set: %q", got)
	}
	// 请求被拆成多段发送
	if _, err := client.Write([]byte("*2\r\n$3\r\nge")); err != nil {
		t.Fatal(err)
	}
	if got := exchange("t\r\n$1\r\nk\r\n"); got != "$1\r\n" {
		t.Errorf("get header: %q", got)
	}
	if line, _ := r.ReadString('\n'); line != "v\r\n" {
		t.Errorf("get body: %q", line)
	}
	if got := exchange("*1\r\n:1\r\n"); !strings.HasPrefix(got, "-ERR") {
		t.Errorf("non bulk command: %q", got)
	}

	// 协议错误后断开连接
	if got := exchange("?oops\r\n"); !strings.HasPrefix(got, "-ERR Protocol error") {
		t.Errorf("protocol error: %q", got)
	}
	if _, err := r.ReadString('\n'); err != io.EOF {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestHandleQuit(t *testing.T) {
	h := MakeHandler(database.NewStandaloneDatabase(nil))
	server, client := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Handle(context.Background(), server)
	}()
	r := bufio.NewReader(client)
	if _, err := client.Write([]byte("*1\r\n$4\r\nquit\r\n")); err != nil {
		t.Fatal(err)
	}
	if line, _ := r.ReadString('\n'); line != "+OK\r\n" {
		t.Errorf("quit: %q", line)
	}
	<-done
	_ = client.Close()
}
