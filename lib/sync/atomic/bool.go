// Package atomic -----------------------------
// @file      : bool.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2023/12/16 10:05
// -------------------------------------------
package atomic

import "sync/atomic"

// Boolean 所有操作都是原子的布尔值
type Boolean uint32

func (b *Boolean) Get() bool {
	return atomic.LoadUint32((*uint32)(b)) != 0
}

func (b *Boolean) Set(v bool) {
	if v {
		atomic.StoreUint32((*uint32)(b), 1)
	} else {
		atomic.StoreUint32((*uint32)(b), 0)
	}
}

// CompareAndSet 只有当前值为 old 时才写入 v
func (b *Boolean) CompareAndSet(old, v bool) bool {
	return atomic.CompareAndSwapUint32((*uint32)(b), toUint32(old), toUint32(v))
}

func toUint32(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}
