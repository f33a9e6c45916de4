// Package pubsub -----------------------------
// @file      : pubsub.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/20 14:30
// -------------------------------------------
package pubsub

import (
	"path"
	"redis-go-client/interface/resp"
	"redis-go-client/resp/reply"
)

const (
	_subscribe    = "subscribe"
	_unsubscribe  = "unsubscribe"
	_psubscribe   = "psubscribe"
	_punsubscribe = "punsubscribe"
)

// makeMsg 订阅类命令的确认 [kind, channel, 当前订阅总数]，channel 为 nil 时编码为 "$-1"
func makeMsg(kind string, channel []byte, count int) []byte {
	var ch resp.Reply = reply.MakeNullBulkReply()
	if channel != nil {
		ch = reply.MakeBulkReply(channel)
	}
	return reply.MakeArrayReply([]resp.Reply{
		reply.MakeBulkReply([]byte(kind)),
		ch,
		reply.MakeIntReply(int64(count)),
	}).ToBytes()
}

// Subscribe 将客户端订阅到给定的频道上，每个频道都回复一条确认
func Subscribe(hub *Hub, c resp.Connection, args [][]byte) resp.Reply {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for _, arg := range args {
		channel := string(arg)
		c.Subscribe(channel)
		add(hub.subs, channel, c)
		_ = c.Write(makeMsg(_subscribe, arg, c.SubsCount()))
	}
	return &reply.NoReply{}
}

// PSubscribe 按模式订阅
func PSubscribe(hub *Hub, c resp.Connection, args [][]byte) resp.Reply {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for _, arg := range args {
		pattern := string(arg)
		c.PSubscribe(pattern)
		add(hub.psubs, pattern, c)
		_ = c.Write(makeMsg(_psubscribe, arg, c.SubsCount()))
	}
	return &reply.NoReply{}
}

// UnSubscribe 客户端将给定的频道都退订，没有参数时退订全部
func UnSubscribe(hub *Hub, c resp.Connection, args [][]byte) resp.Reply {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	channels := toStrings(args)
	if len(args) == 0 {
		channels = c.GetChannels()
	}
	if len(channels) == 0 {
		_ = c.Write(makeMsg(_unsubscribe, nil, c.SubsCount()))
		return &reply.NoReply{}
	}
	for _, channel := range channels {
		c.UnSubscribe(channel)
		remove(hub.subs, channel, c)
		// 返回退订的频道，以及当前订阅的数量
		_ = c.Write(makeMsg(_unsubscribe, []byte(channel), c.SubsCount()))
	}
	return &reply.NoReply{}
}

// PUnSubscribe 退订模式
func PUnSubscribe(hub *Hub, c resp.Connection, args [][]byte) resp.Reply {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	patterns := toStrings(args)
	if len(args) == 0 {
		patterns = c.GetPatterns()
	}
	if len(patterns) == 0 {
		_ = c.Write(makeMsg(_punsubscribe, nil, c.SubsCount()))
		return &reply.NoReply{}
	}
	for _, pattern := range patterns {
		c.PUnSubscribe(pattern)
		remove(hub.psubs, pattern, c)
		_ = c.Write(makeMsg(_punsubscribe, []byte(pattern), c.SubsCount()))
	}
	return &reply.NoReply{}
}

// UnsubscribeAll 连接关闭时清理订阅关系
func UnsubscribeAll(hub *Hub, c resp.Connection) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for _, channel := range c.GetChannels() {
		c.UnSubscribe(channel)
		remove(hub.subs, channel, c)
	}
	for _, pattern := range c.GetPatterns() {
		c.PUnSubscribe(pattern)
		remove(hub.psubs, pattern, c)
	}
}

// Publish 向订阅频道的所有订阅者发送消息，返回收到消息的客户端数量
func Publish(hub *Hub, args [][]byte) resp.Reply {
	if len(args) != 2 {
		return reply.MakeArgNumErrReply("publish")
	}
	channel := args[0]
	message := args[1]
	hub.mu.Lock()
	defer hub.mu.Unlock()
	count := 0
	if raw, ok := hub.subs.Get(string(channel)); ok {
		msg := reply.MakeMultiBulkReply([][]byte{[]byte(KindMessage), channel, message}).ToBytes()
		for client := range raw.(subscribers) {
			_ = client.Write(msg)
			count++
		}
	}
	hub.psubs.ForEach(func(pattern string, val interface{}) bool {
		// 与 redis 的 glob 规则相近，'/' 之外都一样
		if matched, _ := path.Match(pattern, string(channel)); !matched {
			return true
		}
		msg := reply.MakeMultiBulkReply([][]byte{[]byte(KindPMessage), []byte(pattern), channel, message}).ToBytes()
		for client := range val.(subscribers) {
			_ = client.Write(msg)
			count++
		}
		return true
	})
	return reply.MakeIntReply(int64(count))
}

func toStrings(args [][]byte) []string {
	result := make([]string, len(args))
	for i, b := range args {
		result[i] = string(b)
	}
	return result
}
