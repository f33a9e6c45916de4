// Package pubsub -----------------------------
// @file      : hub.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/20 14:10
// -------------------------------------------
package pubsub

import (
	"redis-go-client/datastruct/dict"
	"redis-go-client/interface/resp"
	"sync"
)

// subscribers 一个频道（或模式）的订阅者集合
type subscribers map[resp.Connection]struct{}

// Hub 储存服务端所有的订阅关系
// channel -> subscribers, pattern -> subscribers
type Hub struct {
	mu    sync.Mutex
	subs  dict.Dict
	psubs dict.Dict
}

// MakeHub creates new hub
func MakeHub() *Hub {
	return &Hub{
		subs:  dict.MakeSyncDict(),
		psubs: dict.MakeSyncDict(),
	}
}

// add 调用方持有 mu
func add(d dict.Dict, key string, client resp.Connection) {
	raw, ok := d.Get(key)
	if !ok {
		raw = subscribers{}
		d.Put(key, raw)
	}
	raw.(subscribers)[client] = struct{}{}
}

// remove 调用方持有 mu
func remove(d dict.Dict, key string, client resp.Connection) {
	raw, ok := d.Get(key)
	if !ok {
		return
	}
	subs := raw.(subscribers)
	delete(subs, client)
	if len(subs) == 0 {
		// clean
		d.Remove(key)
	}
}
