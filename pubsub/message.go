// Package pubsub -----------------------------
// @file      : message.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/20 15:02
// -------------------------------------------
package pubsub

import (
	"redis-go-client/interface/resp"
	"redis-go-client/resp/reply"
)

const (
	KindMessage  = "message"
	KindPMessage = "pmessage"
)

// Message 服务端推送的一条订阅消息
// message:  [message, channel, payload]
// pmessage: [pmessage, pattern, channel, payload]
type Message struct {
	Kind    string
	Pattern string
	Channel string
	Payload []byte
}

func (m *Message) String() string {
	if m.Kind == KindPMessage {
		return m.Kind + " " + m.Pattern + " " + m.Channel + " " + string(m.Payload)
	}
	return m.Kind + " " + m.Channel + " " + string(m.Payload)
}

// ParseMessage 判断一个帧是否为推送消息
func ParseMessage(r resp.Reply) (*Message, bool) {
	args, ok := reply.ToArgs(r)
	if !ok || len(args) < 3 {
		return nil, false
	}
	switch string(args[0]) {
	case KindMessage:
		if len(args) != 3 {
			return nil, false
		}
		return &Message{
			Kind:    KindMessage,
			Channel: string(args[1]),
			Payload: args[2],
		}, true
	case KindPMessage:
		if len(args) != 4 {
			return nil, false
		}
		return &Message{
			Kind:    KindPMessage,
			Pattern: string(args[1]),
			Channel: string(args[2]),
			Payload: args[3],
		}, true
	}
	return nil, false
}
