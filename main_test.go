// Package main -----------------------------
// @file      : main_test.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/24 19:20
// -------------------------------------------
package main

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"redis-go-client/database"
	"redis-go-client/resp/client"
	"redis-go-client/resp/handler"
	"redis-go-client/tcp"
)

func startServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	closeChan := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		tcp.ListenAndServe(ln, handler.MakeHandler(database.NewStandaloneDatabase(nil)), closeChan)
	}()
	t.Cleanup(func() {
		close(closeChan)
		<-done
	})
	return ln.Addr().String()
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	a := app()
	a.Writer = &out
	argv := append([]string{"redis-go", "--config", filepath.Join(t.TempDir(), "none.yaml"), "--log-level", "error"}, args...)
	if err := a.Run(argv); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func TestExecCommand(t *testing.T) {
	url := "redis://" + startServer(t)
	if got := run(t, "--url", url, "exec", "set", "k", "v"); got != "OK\n" {
		t.Errorf("set: %q", got)
	}
	if got := run(t, "--url", url, "exec", "get", "k"); got != "\"v\"\n" {
		t.Errorf("get: %q", got)
	}
	if got := run(t, "--url", url, "exec", "nosuch"); !strings.HasPrefix(got, "(error) ERR") {
		t.Errorf("unknown command: %q", got)
	}
}

func TestRunPipeline(t *testing.T) {
	c, err := client.MakeClient("redis://" + startServer(t))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	in := strings.NewReader("set a 1\n\nincr a\nget a\nget b\n")
	var out bytes.Buffer
	if err := runPipeline(context.Background(), c, in, &out); err != nil {
		t.Fatal(err)
	}
	want := "OK\n(integer) 2\n\"2\"\n(nil)\n"
	if out.String() != want {
		t.Errorf("expected %q, got %q", want, out.String())
	}
}
