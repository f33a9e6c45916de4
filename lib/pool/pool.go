// Package pool -----------------------------
// @file      : pool.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/21 10:30
// -------------------------------------------
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrAcquireTimeout 在期限内没有可用的资源
	ErrAcquireTimeout = errors.New("pool: acquire timeout")
	// ErrClosed 池已关闭
	ErrClosed = errors.New("pool: closed")
)

// Factory 创建一个资源
type Factory[T any] func(ctx context.Context) (T, error)

// Teardown 销毁一个资源
type Teardown[T any] func(ctx context.Context, item T) error

// Acquirer 资源池的公共约定，Pool 和 CommonsPool 都实现了它
type Acquirer[T any] interface {
	Acquire(ctx context.Context) (T, error)
	Release(item T)
	Close(ctx context.Context, teardown Teardown[T]) error
	Stats() Stats
}

// slot 空闲栈中的一个位置，ready 为 false 表示还没有创建资源
type slot[T any] struct {
	ready bool
	item  T
}

// Stats 池的快照，Free + InUse == Size
type Stats struct {
	Size  int
	Free  int
	Ready int
	InUse int
}

// Pool 容量固定的 LIFO 资源池，资源在第一次被取用时才创建
// avail 中的令牌数与空闲栈的长度一致，等待令牌时不持有锁
type Pool[T comparable] struct {
	size    int
	factory Factory[T]
	avail   chan struct{}
	done    chan struct{}

	mu       sync.Mutex
	free     []slot[T]
	used     map[T]struct{}
	creating int
	closed   bool
	teardown Teardown[T]
}

// New 初始化 size 个空位置
func New[T comparable](size int, factory Factory[T]) *Pool[T] {
	if size <= 0 {
		size = 1
	}
	p := &Pool[T]{
		size:    size,
		factory: factory,
		avail:   make(chan struct{}, size),
		done:    make(chan struct{}),
		free:    make([]slot[T], size),
		used:    make(map[T]struct{}, size),
	}
	for i := 0; i < size; i++ {
		p.avail <- struct{}{}
	}
	return p
}

// Acquire 取出最近归还的资源，没有空闲位置时阻塞
// ctx 超时返回 ErrAcquireTimeout，不会占用位置
func (p *Pool[T]) Acquire(ctx context.Context) (T, error) {
	var zero T
	select {
	case <-p.avail:
	case <-p.done:
		return zero, ErrClosed
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrAcquireTimeout
		}
		return zero, ctx.Err()
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return zero, ErrClosed
	}
	s := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	if s.ready {
		p.used[s.item] = struct{}{}
		p.mu.Unlock()
		return s.item, nil
	}
	p.creating++
	p.mu.Unlock()

	item, err := p.factory(ctx)

	p.mu.Lock()
	p.creating--
	if err != nil {
		// 创建失败，把空位置还回去
		if !p.closed {
			p.free = append(p.free, slot[T]{})
			p.avail <- struct{}{}
		}
		p.mu.Unlock()
		return zero, fmt.Errorf("pool: create resource: %w", err)
	}
	if p.closed {
		// 创建期间池被关闭，Close 已经看不到这个资源
		teardown := p.teardown
		p.mu.Unlock()
		if teardown != nil {
			_ = teardown(ctx, item)
		}
		return zero, ErrClosed
	}
	p.used[item] = struct{}{}
	p.mu.Unlock()
	return item, nil
}

// Release 归还资源，重复归还或者归还不属于池的资源什么都不做
func (p *Pool[T]) Release(item T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.used[item]; !ok {
		return
	}
	delete(p.used, item)
	if p.closed {
		return
	}
	p.free = append(p.free, slot[T]{ready: true, item: item})
	p.avail <- struct{}{}
}

// With 取出资源执行 fn，任何情况下都会归还
func (p *Pool[T]) With(ctx context.Context, fn func(item T) error) error {
	item, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(item)
	return fn(item)
}

// Close 并发销毁已创建的资源（包括正在使用的），多次调用只生效一次
func (p *Pool[T]) Close(ctx context.Context, teardown Teardown[T]) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.teardown = teardown
	close(p.done)
	items := make([]T, 0, len(p.used)+len(p.free))
	for item := range p.used {
		items = append(items, item)
	}
	for _, s := range p.free {
		if s.ready {
			items = append(items, s.item)
		}
	}
	p.free = nil
	p.used = make(map[T]struct{})
	p.mu.Unlock()

	if teardown == nil {
		return nil
	}
	var g errgroup.Group
	for _, item := range items {
		g.Go(func() error {
			return teardown(ctx, item)
		})
	}
	return g.Wait()
}

func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := Stats{Size: p.size, Free: len(p.free), InUse: len(p.used) + p.creating}
	for _, s := range p.free {
		if s.ready {
			st.Ready++
		}
	}
	return st
}

func (p *Pool[T]) String() string {
	st := p.Stats()
	return fmt.Sprintf("Pool[size=%d free=%d in_use=%d]", st.Size, st.Free, st.InUse)
}
