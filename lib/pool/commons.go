// Package pool -----------------------------
// @file      : commons.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/17 14:39
// -------------------------------------------
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	commons "github.com/jolestar/go-commons-pool/v2"
	"golang.org/x/sync/errgroup"
)

// CommonsPool 基于 go-commons-pool 的实现，约定与 Pool 相同
type CommonsPool[T comparable] struct {
	pool *commons.ObjectPool

	mu       sync.Mutex
	borrowed map[T]struct{}
	teardown Teardown[T]
	closed   bool
	errs     []error
}

// objectFactory 适配 commons.PooledObjectFactory
type objectFactory[T comparable] struct {
	owner   *CommonsPool[T]
	factory Factory[T]
}

func (f *objectFactory[T]) MakeObject(ctx context.Context) (*commons.PooledObject, error) {
	item, err := f.factory(ctx)
	if err != nil {
		return nil, err
	}
	return commons.NewPooledObject(item), nil
}

func (f *objectFactory[T]) DestroyObject(ctx context.Context, object *commons.PooledObject) error {
	item, ok := object.Object.(T)
	if !ok {
		return errors.New("type mismatch")
	}
	f.owner.mu.Lock()
	teardown := f.owner.teardown
	f.owner.mu.Unlock()
	if teardown == nil {
		return nil
	}
	if err := teardown(ctx, item); err != nil {
		f.owner.mu.Lock()
		f.owner.errs = append(f.owner.errs, err)
		f.owner.mu.Unlock()
		return err
	}
	return nil
}

func (f *objectFactory[T]) ValidateObject(ctx context.Context, object *commons.PooledObject) bool {
	return true
}

func (f *objectFactory[T]) ActivateObject(ctx context.Context, object *commons.PooledObject) error {
	return nil
}

func (f *objectFactory[T]) PassivateObject(ctx context.Context, object *commons.PooledObject) error {
	return nil
}

// NewCommons 最多 size 个资源，LIFO，耗尽时阻塞
func NewCommons[T comparable](ctx context.Context, size int, factory Factory[T]) *CommonsPool[T] {
	if size <= 0 {
		size = 1
	}
	p := &CommonsPool[T]{
		borrowed: make(map[T]struct{}),
	}
	config := commons.NewDefaultPoolConfig()
	config.LIFO = true
	config.MaxTotal = size
	config.MaxIdle = size
	config.BlockWhenExhausted = true
	p.pool = commons.NewObjectPool(ctx, &objectFactory[T]{owner: p, factory: factory}, config)
	return p
}

func (p *CommonsPool[T]) Acquire(ctx context.Context) (T, error) {
	var zero T
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return zero, ErrClosed
	}
	object, err := p.pool.BorrowObject(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrAcquireTimeout
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		// 与 Close 并发时 go-commons-pool 返回 pool not open
		p.mu.Lock()
		closed = p.closed
		p.mu.Unlock()
		if closed {
			return zero, ErrClosed
		}
		return zero, fmt.Errorf("pool: create resource: %w", err)
	}
	item, ok := object.(T)
	if !ok {
		return zero, errors.New("pool: wrong type")
	}
	p.mu.Lock()
	if p.closed {
		teardown := p.teardown
		p.mu.Unlock()
		if teardown != nil {
			_ = teardown(ctx, item)
		}
		return zero, ErrClosed
	}
	p.borrowed[item] = struct{}{}
	p.mu.Unlock()
	return item, nil
}

func (p *CommonsPool[T]) Release(item T) {
	p.mu.Lock()
	if _, ok := p.borrowed[item]; !ok {
		p.mu.Unlock()
		return
	}
	delete(p.borrowed, item)
	p.mu.Unlock()
	_ = p.pool.ReturnObject(context.Background(), item)
}

// With 取出资源执行 fn，任何情况下都会归还
func (p *CommonsPool[T]) With(ctx context.Context, fn func(item T) error) error {
	item, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(item)
	return fn(item)
}

// Close 空闲资源由 go-commons-pool 销毁，借出的资源在这里并发销毁
func (p *CommonsPool[T]) Close(ctx context.Context, teardown Teardown[T]) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.teardown = teardown
	items := make([]T, 0, len(p.borrowed))
	for item := range p.borrowed {
		items = append(items, item)
	}
	p.borrowed = make(map[T]struct{})
	p.mu.Unlock()

	p.pool.Close(ctx)

	var g errgroup.Group
	if teardown != nil {
		for _, item := range items {
			g.Go(func() error {
				return teardown(ctx, item)
			})
		}
	}
	err := g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(append(p.errs, err)...)
}

func (p *CommonsPool[T]) Stats() Stats {
	active := p.pool.GetNumActive()
	idle := p.pool.GetNumIdle()
	size := p.pool.Config.MaxTotal
	return Stats{Size: size, Free: size - active, Ready: idle, InUse: active}
}
