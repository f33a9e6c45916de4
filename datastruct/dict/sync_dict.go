// Package dict -----------------------------
// @file      : sync_dict.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/4 19:20
// -------------------------------------------
package dict

import (
	"sync"
	"sync/atomic"
)

// SyncDict 基于 sync.Map 的并发安全字典
type SyncDict struct {
	m     sync.Map
	count atomic.Int64
}

func MakeSyncDict() *SyncDict {
	return &SyncDict{}
}

func (s *SyncDict) Get(key string) (val interface{}, exists bool) {
	return s.m.Load(key)
}

func (s *SyncDict) Len() int {
	return int(s.count.Load())
}

func (s *SyncDict) Put(key string, val interface{}) (result int) {
	_, existed := s.m.Swap(key, val)
	// 修改
	if existed {
		return 0
	}
	// 插入新值
	s.count.Add(1)
	return 1
}

// PutIfAbsent 如果不存在就往map添加值
func (s *SyncDict) PutIfAbsent(key string, val interface{}) (result int) {
	if _, loaded := s.m.LoadOrStore(key, val); loaded {
		return 0
	}
	s.count.Add(1)
	return 1
}

// PutIfExists 只修改已有的值
func (s *SyncDict) PutIfExists(key string, val interface{}) (result int) {
	if _, existed := s.m.Load(key); existed {
		s.m.Store(key, val)
		return 1
	}
	return 0
}

func (s *SyncDict) Remove(key string) (result int) {
	if _, existed := s.m.LoadAndDelete(key); existed {
		s.count.Add(-1)
		return 1
	}
	return 0
}

func (s *SyncDict) ForEach(consumer Consumer) {
	s.m.Range(func(key, value interface{}) bool {
		return consumer(key.(string), value)
	})
}

func (s *SyncDict) Keys() []string {
	result := make([]string, 0, s.Len())
	s.m.Range(func(key, value interface{}) bool {
		result = append(result, key.(string))
		return true
	})
	return result
}

func (s *SyncDict) Clear() {
	s.m.Range(func(key, value interface{}) bool {
		s.Remove(key.(string))
		return true
	})
}
