// Package client -----------------------------
// @file      : pooled.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/22 15:30
// -------------------------------------------
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"

	"redis-go-client/interface/resp"
	"redis-go-client/lib/metrics"
	"redis-go-client/lib/pool"
)

const (
	BackendLIFO    = "lifo"
	BackendCommons = "commons"
)

// PoolOptions RateLimit 为每秒允许的获取次数，0 不限
type PoolOptions struct {
	Size           int
	AcquireTimeout time.Duration
	Backend        string
	RateLimit      float64
	Burst          int
}

// PooledClient 多条连接组成的池，每条命令在一条空闲连接上执行
// 依赖会话状态的命令需要通过 With 取出连接使用
type PooledClient struct {
	opts           Options
	pool           pool.Acquirer[*Client]
	limiter        *rate.Limiter
	acquireTimeout time.Duration
	logger         hclog.Logger
	metrics        *metrics.Metrics
}

func MakePooledClient(rawURL string, poolOpts PoolOptions, opts ...Option) (*PooledClient, error) {
	o, err := OptionsFromURL(rawURL, opts...)
	if err != nil {
		return nil, err
	}
	return NewPooledClient(o, poolOpts)
}

func NewPooledClient(o *Options, poolOpts PoolOptions) (*PooledClient, error) {
	opts := *o
	factory := func(ctx context.Context) (*Client, error) {
		// 连接在第一次执行命令时建立
		return NewClient(&opts), nil
	}
	p := &PooledClient{
		opts:           opts,
		acquireTimeout: poolOpts.AcquireTimeout,
		metrics:        opts.Metrics,
	}
	switch strings.ToLower(poolOpts.Backend) {
	case "", BackendLIFO:
		p.pool = pool.New[*Client](poolOpts.Size, factory)
	case BackendCommons:
		p.pool = pool.NewCommons[*Client](context.Background(), poolOpts.Size, factory)
	default:
		return nil, fmt.Errorf("unknown pool backend %q", poolOpts.Backend)
	}
	if poolOpts.RateLimit > 0 {
		burst := poolOpts.Burst
		if burst <= 0 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(poolOpts.RateLimit), burst)
	}
	l := opts.Logger
	if l == nil {
		l = hclog.NewNullLogger()
	}
	p.logger = l.Named("pool")
	return p, nil
}

func unsupported(name string) bool {
	switch strings.ToLower(name) {
	case "multi", "exec", "discard", "subscribe", "psubscribe", "unsubscribe", "punsubscribe":
		return true
	}
	return false
}

// Execute 取出一条连接执行命令后归还
func (p *PooledClient) Execute(ctx context.Context, name string, args ...interface{}) (resp.Reply, error) {
	if unsupported(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCommand, name)
	}
	var result resp.Reply
	err := p.With(ctx, func(c *Client) error {
		r, err := c.Execute(ctx, name, args...)
		result = r
		return err
	})
	return result, err
}

func (p *PooledClient) acquire(ctx context.Context) (*Client, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if p.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
		defer cancel()
	}
	start := time.Now()
	c, err := p.pool.Acquire(ctx)
	p.metrics.ObserveAcquire(start, errors.Is(err, pool.ErrAcquireTimeout))
	return c, err
}

// With 独占一条连接执行 fn
// fn 返回时订阅还没有结束，最多等待 AcquireTimeout，之后关闭连接并返回 ErrActivePubSub
func (p *PooledClient) With(ctx context.Context, fn func(c *Client) error) (err error) {
	c, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer p.pool.Release(c)
	defer func() {
		if !c.Subscribed() {
			return
		}
		// 没有设置 AcquireTimeout 时不等待
		waitCtx, cancel := context.WithTimeout(context.Background(), p.acquireTimeout)
		defer cancel()
		_ = c.waitListener(waitCtx)
		if !c.Subscribed() {
			return
		}
		p.logger.Warn("closing client because of active pub/sub", "client", c.String())
		_ = c.Close()
		if err == nil {
			err = ErrActivePubSub
		}
	}()
	return fn(c)
}

func (p *PooledClient) Stats() pool.Stats {
	return p.pool.Stats()
}

// Close 关闭池中所有连接
func (p *PooledClient) Close(ctx context.Context) error {
	return p.pool.Close(ctx, func(ctx context.Context, c *Client) error {
		return c.Close()
	})
}

func (p *PooledClient) String() string {
	st := p.pool.Stats()
	return fmt.Sprintf("PooledClient[%s][size=%d free=%d]", p.opts.endpoint(), st.Size, st.Free)
}
