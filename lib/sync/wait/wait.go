// Package wait -----------------------------
// @file      : wait.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2023/12/16 10:12
// -------------------------------------------
package wait

import (
	"sync"
	"time"
)

// Wait 类似于 WaitGroup，可以带超时等待
type Wait struct {
	wg sync.WaitGroup
}

func (w *Wait) Add(delta int) {
	w.wg.Add(delta)
}

func (w *Wait) Done() {
	w.wg.Done()
}

func (w *Wait) Wait() {
	w.wg.Wait()
}

// WaitWithTimeout 阻塞直到计数器为零或超时，超时返回 true
func (w *Wait) WaitWithTimeout(timeout time.Duration) bool {
	c := make(chan struct{})
	go func() {
		defer close(c)
		w.wg.Wait()
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-c:
		return false
	case <-timer.C:
		return true
	}
}
