// Package pubsub -----------------------------
// @file      : queue.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/20 15:20
// -------------------------------------------
package pubsub

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed 队列已关闭且已取空
var ErrQueueClosed = errors.New("pubsub queue closed")

// ClosedError 队列因为错误而关闭，Cause 是导致关闭的原因
type ClosedError struct {
	Cause error
}

func (e *ClosedError) Error() string {
	return ErrQueueClosed.Error() + ": " + e.Cause.Error()
}

func (e *ClosedError) Unwrap() error {
	return e.Cause
}

func (e *ClosedError) Is(target error) bool {
	return target == ErrQueueClosed
}

// Queue 订阅消息的投递队列，可关闭，有界时 Put 会阻塞
// 每次状态变化都关闭并替换 changed，等待者因此都会被唤醒一次
type Queue struct {
	max     int
	mu      sync.Mutex
	items   []*Message
	closed  bool
	cause   error
	changed chan struct{}
}

// NewQueue maxSize 为 0 表示不限长度
func NewQueue(maxSize int) *Queue {
	if maxSize < 0 {
		maxSize = 0
	}
	return &Queue{
		max:     maxSize,
		changed: make(chan struct{}),
	}
}

// notify 调用方持有 mu
func (q *Queue) notify() {
	close(q.changed)
	q.changed = make(chan struct{})
}

// Put 写入一条消息，队列满时等待空位
func (q *Queue) Put(ctx context.Context, msg *Message) error {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrQueueClosed
		}
		if q.max == 0 || len(q.items) < q.max {
			q.items = append(q.items, msg)
			q.notify()
			q.mu.Unlock()
			return nil
		}
		wait := q.changed
		q.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Get 取出最早的消息；关闭后仍先返回剩余消息
func (q *Queue) Get(ctx context.Context) (*Message, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			msg := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.notify()
			q.mu.Unlock()
			return msg, nil
		}
		if q.closed {
			err := q.closedErr()
			q.mu.Unlock()
			return nil, err
		}
		wait := q.changed
		q.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (q *Queue) closedErr() error {
	if q.cause == nil {
		return ErrQueueClosed
	}
	return &ClosedError{Cause: q.cause}
}

// Close 只有第一次调用生效，唤醒所有等待中的 Get 和 Put
func (q *Queue) Close(cause error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cause = cause
	q.notify()
}

// Range 依次处理消息直到队列关闭或 fn 返回 false
// 正常关闭返回 nil，因错误关闭返回该错误
func (q *Queue) Range(ctx context.Context, fn func(msg *Message) bool) error {
	for {
		msg, err := q.Get(ctx)
		if err != nil {
			var closedErr *ClosedError
			if errors.As(err, &closedErr) {
				return closedErr.Cause
			}
			if errors.Is(err, ErrQueueClosed) {
				return nil
			}
			return err
		}
		if !fn(msg) {
			return nil
		}
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
