package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	props := Default()
	if props.URL != "redis://127.0.0.1:6379/0" {
		t.Errorf("url %q", props.URL)
	}
	if props.ConnectTimeout != 5*time.Second || props.Pool.Size != 10 || props.Pool.Backend != "lifo" {
		t.Errorf("unexpected defaults %+v", props)
	}
	if props.Server.Databases != 16 || props.Log.Level != "info" {
		t.Errorf("unexpected defaults %+v", props)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redis-go.yaml")
	content := `
url: redis://cache.local:6380/2
read_timeout: 2s
parser: stream
pool:
  size: 4
  backend: commons
server:
  requirepass: secret
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REDISGO_POOL__SIZE", "8")
	t.Setenv("REDISGO_WRITE_TIMEOUT", "750ms")

	props, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if props.URL != "redis://cache.local:6380/2" || props.Parser != "stream" {
		t.Errorf("file values not applied: %+v", props)
	}
	if props.ReadTimeout != 2*time.Second || props.WriteTimeout != 750*time.Millisecond {
		t.Errorf("timeouts %v %v", props.ReadTimeout, props.WriteTimeout)
	}
	// 环境变量优先于配置文件
	if props.Pool.Size != 8 || props.Pool.Backend != "commons" {
		t.Errorf("pool %+v", props.Pool)
	}
	if props.Server.RequirePass != "secret" || props.Server.Port != 6399 {
		t.Errorf("server %+v", props.Server)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatal(err)
	}
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw  string
		want Endpoint
	}{
		{"redis://localhost", Endpoint{Network: "tcp", Addr: "localhost:6379", Host: "localhost", Port: 6379}},
		{"redis://:pass@127.0.0.1:7000/3", Endpoint{Network: "tcp", Addr: "127.0.0.1:7000", Host: "127.0.0.1", Port: 7000, Password: "pass", DB: 3}},
		{"rediss://user:pw@example.com/1", Endpoint{Network: "tcp", Addr: "example.com:6379", Host: "example.com", Port: 6379, Username: "user", Password: "pw", DB: 1, TLS: true}},
		{"redis://localhost?db=5", Endpoint{Network: "tcp", Addr: "localhost:6379", Host: "localhost", Port: 6379, DB: 5}},
		{"redis+unix:///tmp/redis.sock?db=2&password=pw", Endpoint{Network: "unix", Addr: "/tmp/redis.sock", Password: "pw", DB: 2}},
		{"unix:///var/run/redis.sock", Endpoint{Network: "unix", Addr: "/var/run/redis.sock"}},
		{"redis-socket://user:pw@/tmp/r.sock", Endpoint{Network: "unix", Addr: "/tmp/r.sock", Username: "user", Password: "pw"}},
		{"unix://:userinfo@/tmp/r.sock?password=query", Endpoint{Network: "unix", Addr: "/tmp/r.sock", Password: "userinfo"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ep, err := ParseURL(tt.raw)
			if err != nil {
				t.Fatal(err)
			}
			if *ep != tt.want {
				t.Errorf("got %+v, want %+v", *ep, tt.want)
			}
		})
	}
}

func TestParseURLErrors(t *testing.T) {
	for _, raw := range []string{
		"localhost:6379",
		"http://localhost",
		"redis://",
		"redis+unix://",
		"redis://localhost/abc",
		"redis://localhost?db=x",
	} {
		if _, err := ParseURL(raw); err == nil {
			t.Errorf("%q: expected error", raw)
		}
	}
}

func TestEndpointString(t *testing.T) {
	ep, _ := ParseURL("redis://localhost:6380/4")
	if ep.String() != "localhost:6380/4" {
		t.Errorf("got %q", ep.String())
	}
	ep, _ = ParseURL("unix:///tmp/redis.sock")
	if ep.String() != "redis.sock" {
		t.Errorf("got %q", ep.String())
	}
}
