// Package config -----------------------------
// @file      : url.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/18 09:30
// -------------------------------------------
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

const DefaultPort = 6379

// Endpoint 连接串解析的结果
type Endpoint struct {
	Network  string // tcp 或 unix
	Addr     string // host:port 或 socket 文件路径
	Host     string
	Port     int
	Username string
	Password string
	DB       int
	TLS      bool
}

// ParseURL 支持的格式:
// redis://[[user]:password@]host[:port][/db]
// rediss://[[user]:password@]host[:port][/db]
// redis+unix://[[user]:password@]/path/to/redis.sock[?db=0&password=xxx]
// redis-socket 和 unix 与 redis+unix 相同
func ParseURL(raw string) (*Endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme == "" {
		return nil, errors.New("scheme is required")
	}
	ep := &Endpoint{}
	if u.User != nil {
		ep.Username = u.User.Username()
		ep.Password, _ = u.User.Password()
	}
	query := u.Query()
	switch u.Scheme {
	case "redis", "rediss":
		if u.Hostname() == "" {
			return nil, errors.New("hostname is required")
		}
		ep.Network = "tcp"
		ep.Host = u.Hostname()
		ep.Port = DefaultPort
		if p := u.Port(); p != "" {
			ep.Port, err = strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("invalid port %q", p)
			}
		}
		ep.Addr = net.JoinHostPort(ep.Host, strconv.Itoa(ep.Port))
		ep.TLS = u.Scheme == "rediss"
		if db := strings.Trim(u.Path, "/"); db != "" {
			if ep.DB, err = strconv.Atoi(db); err != nil {
				return nil, fmt.Errorf("db must be integer: %q", db)
			}
		}
	case "redis+unix", "redis-socket", "unix":
		if u.Path == "" {
			return nil, errors.New("unix socket path is required")
		}
		ep.Network = "unix"
		ep.Addr = u.Path
		// userinfo 中的密码优先
		if ep.Password == "" {
			ep.Password = query.Get("password")
		}
	default:
		return nil, fmt.Errorf("scheme is not supported: %s", u.Scheme)
	}
	if db := query.Get("db"); db != "" {
		if ep.DB, err = strconv.Atoi(db); err != nil {
			return nil, fmt.Errorf("db param must be integer: %q", db)
		}
	}
	if ep.DB < 0 {
		return nil, fmt.Errorf("db must not be negative: %d", ep.DB)
	}
	return ep, nil
}

// String host:port/db 或 socket 文件名
func (ep *Endpoint) String() string {
	if ep.Network == "unix" {
		return filepath.Base(ep.Addr)
	}
	return ep.Addr + "/" + strconv.Itoa(ep.DB)
}
