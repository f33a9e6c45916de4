package pool

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCommonsPool(t *testing.T) {
	ctx := context.Background()
	c := &counter{}
	p := NewCommons(ctx, 2, c.factory)
	a, err := p.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st := p.Stats(); st.InUse != 2 {
		t.Errorf("stats %+v", st)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := p.Acquire(timeoutCtx); !errors.Is(err, ErrAcquireTimeout) {
		t.Errorf("got %v", err)
	}

	p.Release(b)
	p.Release(b)
	got, err := p.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != b {
		t.Error("expected LIFO reuse")
	}
	p.Release(got)

	if err := p.Close(ctx, teardown); err != nil {
		t.Fatal(err)
	}
	if !a.closed.Load() || !b.closed.Load() {
		t.Error("teardown incomplete")
	}
	if _, err := p.Acquire(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("acquire after close: %v", err)
	}
	if err := p.Close(ctx, teardown); err != nil {
		t.Fatal(err)
	}
}

func TestCommonsPoolFactoryFailure(t *testing.T) {
	ctx := context.Background()
	c := &counter{fail: true}
	p := NewCommons(ctx, 1, c.factory)
	if _, err := p.Acquire(ctx); err == nil {
		t.Fatal("expected factory error")
	}
	c.mu.Lock()
	c.fail = false
	c.mu.Unlock()
	if err := p.With(ctx, func(r *resource) error { return nil }); err != nil {
		t.Fatal(err)
	}
}

func TestCommonsPoolCreateDuringClose(t *testing.T) {
	g := newGate()
	err := acquireDuringClose(t, NewCommons(context.Background(), 1, g.factory), g)
	if !errors.Is(err, ErrClosed) {
		t.Errorf("got %v", err)
	}
}
