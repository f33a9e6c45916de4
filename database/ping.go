// Package database -----------------------------
// @file      : ping.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/12 20:11
// -------------------------------------------
package database

import (
	"redis-go-client/interface/resp"
	"redis-go-client/resp/reply"
)

// PING [message]
func Ping(db *DB, args [][]byte) resp.Reply {
	switch len(args) {
	case 0:
		return reply.MakePongReply()
	case 1:
		return reply.MakeBulkReply(args[0])
	}
	return reply.MakeArgNumErrReply("ping")
}

// ECHO message
func Echo(db *DB, args [][]byte) resp.Reply {
	return reply.MakeBulkReply(args[0])
}

func init() {
	RegisterCommand("Ping", Ping, -1)
	RegisterCommand("Echo", Echo, 2)
}
