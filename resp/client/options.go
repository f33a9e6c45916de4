// Package client -----------------------------
// @file      : options.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/18 09:50
// -------------------------------------------
package client

import (
	"crypto/tls"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"redis-go-client/lib/config"
	"redis-go-client/lib/metrics"
	"redis-go-client/resp/parser"
)

// Options 连接参数，零值的超时表示不限制
type Options struct {
	Network  string
	Addr     string
	Username string
	Password string
	DB       int

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	TLSConfig      *tls.Config

	ParserKind    parser.Kind
	ParserOptions []parser.Option
	// 订阅消息队列的长度，0 不限
	PubSubQueueSize int

	Logger  hclog.Logger
	Metrics *metrics.Metrics
}

type Option func(*Options)

func WithConnectTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ConnectTimeout = d
	}
}

// WithTimeout 同时设置读写超时
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ReadTimeout = d
		o.WriteTimeout = d
	}
}

func WithReadTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ReadTimeout = d
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.WriteTimeout = d
	}
}

func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *Options) {
		o.TLSConfig = cfg
	}
}

func WithParser(kind parser.Kind, opts ...parser.Option) Option {
	return func(o *Options) {
		o.ParserKind = kind
		o.ParserOptions = opts
	}
}

func WithPubSubQueueSize(n int) Option {
	return func(o *Options) {
		o.PubSubQueueSize = n
	}
}

func WithLogger(l hclog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// OptionsFromURL 解析连接串，rediss 使用默认的 TLS 配置
func OptionsFromURL(rawURL string, opts ...Option) (*Options, error) {
	ep, err := config.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	o := &Options{
		Network:  ep.Network,
		Addr:     ep.Addr,
		Username: ep.Username,
		Password: ep.Password,
		DB:       ep.DB,
	}
	if ep.TLS {
		o.TLSConfig = &tls.Config{ServerName: ep.Host}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// FromProperties 配置文件中的客户端参数
func FromProperties(props *config.Properties) ([]Option, error) {
	kind, err := parser.ParseKind(props.Parser)
	if err != nil {
		return nil, err
	}
	return []Option{
		WithConnectTimeout(props.ConnectTimeout),
		WithReadTimeout(props.ReadTimeout),
		WithWriteTimeout(props.WriteTimeout),
		WithParser(kind),
		WithPubSubQueueSize(props.PubSubQueueSize),
	}, nil
}

// endpoint host:port/db 或 socket 文件名
func (o *Options) endpoint() string {
	if o.Network == "unix" {
		return filepath.Base(o.Addr)
	}
	return o.Addr + "/" + strconv.Itoa(o.DB)
}

func (o *Options) network() string {
	if o.Network == "" {
		return "tcp"
	}
	return o.Network
}

func (o *Options) dialer() *net.Dialer {
	return &net.Dialer{Timeout: o.ConnectTimeout}
}
