// Package client -----------------------------
// @file      : commands_test.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/24 16:20
// -------------------------------------------
package client

import (
	"testing"
)

func TestCommands(t *testing.T) {
	addr := startServer(t, nil)
	ctx := testContext(t)
	cmds := NewCommands(newTestClient(t, "redis://"+addr))

	if s, err := cmds.Ping(ctx); err != nil || s != "PONG" {
		t.Errorf("ping: %q %v", s, err)
	}
	if s, err := cmds.Echo(ctx, "hello world"); err != nil || s != "hello world" {
		t.Errorf("echo: %q %v", s, err)
	}
	if err := cmds.Set(ctx, "a", 1.5); err != nil {
		t.Fatal(err)
	}
	if v, ok, err := cmds.Get(ctx, "a"); err != nil || !ok || string(v) != "1.5" {
		t.Errorf("get: %q %v %v", v, ok, err)
	}
	if _, ok, err := cmds.Get(ctx, "b"); err != nil || ok {
		t.Errorf("get missing: %v %v", ok, err)
	}
	if err := cmds.Set(ctx, "empty", ""); err != nil {
		t.Fatal(err)
	}
	if v, ok, err := cmds.Get(ctx, "empty"); err != nil || !ok || len(v) != 0 {
		t.Errorf("get empty: %q %v %v", v, ok, err)
	}
	if n, err := cmds.Incr(ctx, "n"); err != nil || n != 1 {
		t.Errorf("incr: %d %v", n, err)
	}
	if n, err := cmds.Exists(ctx, "a", "b", "n", "a"); err != nil || n != 3 {
		t.Errorf("exists: %d %v", n, err)
	}
	if n, err := cmds.Del(ctx, "a", "b", "n"); err != nil || n != 2 {
		t.Errorf("del: %d %v", n, err)
	}
	if n, err := cmds.Publish(ctx, "nobody", "x"); err != nil || n != 0 {
		t.Errorf("publish: %d %v", n, err)
	}
}
