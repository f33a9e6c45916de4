package pubsub

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"
)

func msg(i int) *Message {
	return &Message{Kind: KindMessage, Channel: "ch", Payload: []byte(strconv.Itoa(i))}
}

func TestQueueFIFO(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(0)
	for i := 0; i < 5; i++ {
		if err := q.Put(ctx, msg(i)); err != nil {
			t.Fatal(err)
		}
	}
	if q.Len() != 5 {
		t.Fatalf("len = %d", q.Len())
	}
	for i := 0; i < 5; i++ {
		m, err := q.Get(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if string(m.Payload) != strconv.Itoa(i) {
			t.Errorf("got %s, want %d", m.Payload, i)
		}
	}
}

func TestQueueGetWaitsForPut(t *testing.T) {
	q := NewQueue(0)
	got := make(chan *Message, 1)
	go func() {
		m, _ := q.Get(context.Background())
		got <- m
	}()
	time.Sleep(20 * time.Millisecond)
	_ = q.Put(context.Background(), msg(7))
	select {
	case m := <-got:
		if string(m.Payload) != "7" {
			t.Errorf("got %s", m.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("Get was not woken by Put")
	}
}

func TestQueueCloseWakesAllWaiters(t *testing.T) {
	q := NewQueue(0)
	cause := errors.New("connection reset")
	const waiters = 4
	var wg sync.WaitGroup
	errs := make(chan error, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := q.Get(context.Background())
			errs <- err
		}()
	}
	time.Sleep(20 * time.Millisecond)
	q.Close(cause)
	q.Close(errors.New("second close is ignored"))
	wg.Wait()
	close(errs)
	n := 0
	for err := range errs {
		n++
		if !errors.Is(err, ErrQueueClosed) || !errors.Is(err, cause) {
			t.Errorf("got %v", err)
		}
	}
	if n != waiters {
		t.Errorf("%d waiters released, want %d", n, waiters)
	}
}

func TestQueueDrainAfterClose(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(0)
	_ = q.Put(ctx, msg(1))
	q.Close(nil)
	if !q.Closed() {
		t.Fatal("queue should be closed")
	}
	if err := q.Put(ctx, msg(2)); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("put after close: %v", err)
	}
	m, err := q.Get(ctx)
	if err != nil || string(m.Payload) != "1" {
		t.Fatalf("got %v %v", m, err)
	}
	if _, err := q.Get(ctx); err != ErrQueueClosed {
		t.Errorf("got %v, want ErrQueueClosed", err)
	}
}

func TestQueueBackpressure(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(1)
	_ = q.Put(ctx, msg(1))
	done := make(chan error, 1)
	go func() {
		done <- q.Put(ctx, msg(2))
	}()
	select {
	case <-done:
		t.Fatal("Put on a full queue returned")
	case <-time.After(30 * time.Millisecond):
	}
	if _, err := q.Get(ctx); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("Put was not released by Get")
	}

	// 关闭同样会释放阻塞的 Put
	go func() {
		done <- q.Put(ctx, msg(3))
	}()
	time.Sleep(20 * time.Millisecond)
	q.Close(nil)
	if err := <-done; !errors.Is(err, ErrQueueClosed) {
		t.Errorf("got %v", err)
	}
}

func TestQueueContextCancel(t *testing.T) {
	q := NewQueue(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := q.Get(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v", err)
	}
}

func TestQueueRange(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(0)
	for i := 0; i < 3; i++ {
		_ = q.Put(ctx, msg(i))
	}
	q.Close(nil)
	var seen []string
	err := q.Range(ctx, func(m *Message) bool {
		seen = append(seen, string(m.Payload))
		return true
	})
	if err != nil || len(seen) != 3 {
		t.Errorf("got %v %v", seen, err)
	}

	cause := errors.New("boom")
	q = NewQueue(0)
	q.Close(cause)
	if err := q.Range(ctx, func(*Message) bool { return true }); err != cause {
		t.Errorf("got %v, want cause", err)
	}
}

func TestParseMessage(t *testing.T) {
	m, ok := ParseMessage(makeArgs("message", "news", "hi"))
	if !ok || m.Channel != "news" || string(m.Payload) != "hi" {
		t.Errorf("got %+v %v", m, ok)
	}
	m, ok = ParseMessage(makeArgs("pmessage", "n*", "news", "hi"))
	if !ok || m.Pattern != "n*" || m.Channel != "news" {
		t.Errorf("got %+v %v", m, ok)
	}
	if _, ok := ParseMessage(makeArgs("subscribe", "news", "1")); ok {
		t.Error("ack parsed as message")
	}
}
