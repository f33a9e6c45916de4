// Package database -----------------------------
// @file      : standalone_database.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/13 21:10
// -------------------------------------------
package database

import (
	"fmt"
	"redis-go-client/interface/resp"
	"redis-go-client/lib/config"
	"redis-go-client/lib/logger"
	"redis-go-client/pubsub"
	"redis-go-client/resp/reply"
	"strconv"
	"strings"
)

// StandaloneDatabase 开发服务器的数据库，多个 DB 加上发布订阅
type StandaloneDatabase struct {
	dbSet       []*DB
	hub         *pubsub.Hub
	requirePass string
}

// NewStandaloneDatabase 默认为16个分数据库
func NewStandaloneDatabase(props *config.ServerProperties) *StandaloneDatabase {
	databases := 16
	requirePass := ""
	if props != nil {
		if props.Databases > 0 {
			databases = props.Databases
		}
		requirePass = props.RequirePass
	}
	database := &StandaloneDatabase{
		dbSet:       make([]*DB, databases),
		hub:         pubsub.MakeHub(),
		requirePass: requirePass,
	}
	for i := range database.dbSet {
		database.dbSet[i] = makeDB(i)
	}
	return database
}

// 订阅模式下允许执行的指令
var subscribeContextCmds = map[string]bool{
	"subscribe":    true,
	"psubscribe":   true,
	"unsubscribe":  true,
	"punsubscribe": true,
	"ping":         true,
	"quit":         true,
}

// Exec auth select 发布订阅在这里处理，其余交给当前选择的 DB
func (database *StandaloneDatabase) Exec(client resp.Connection, args [][]byte) (result resp.Reply) {
	defer func() {
		if err := recover(); err != nil {
			logger.Error("exec panic", "error", err)
			result = reply.MakeErrReply(fmt.Sprintf("ERR %v", err))
		}
	}()

	cmdName := strings.ToLower(string(args[0]))
	switch cmdName {
	case "auth":
		return database.execAuth(client, args[1:])
	case "quit":
		// 连接由 handler 在回复之后关闭
		return reply.MakeOkReply()
	}
	if database.requirePass != "" && !client.Authenticated() {
		return &reply.NoAuthErrReply{}
	}
	if client.SubsCount() > 0 && !subscribeContextCmds[cmdName] {
		return reply.MakeErrReply("ERR Can't execute '" + cmdName +
			"': only (P)SUBSCRIBE / (P)UNSUBSCRIBE / PING / QUIT are allowed in this context")
	}

	switch cmdName {
	case "select":
		if len(args) != 2 {
			return reply.MakeArgNumErrReply("select")
		}
		return execSelect(client, database, args[1:])
	case "subscribe":
		if len(args) < 2 {
			return reply.MakeArgNumErrReply(cmdName)
		}
		return pubsub.Subscribe(database.hub, client, args[1:])
	case "psubscribe":
		if len(args) < 2 {
			return reply.MakeArgNumErrReply(cmdName)
		}
		return pubsub.PSubscribe(database.hub, client, args[1:])
	case "unsubscribe":
		return pubsub.UnSubscribe(database.hub, client, args[1:])
	case "punsubscribe":
		return pubsub.PUnSubscribe(database.hub, client, args[1:])
	case "publish":
		return pubsub.Publish(database.hub, args[1:])
	case "ping":
		if client.SubsCount() > 0 {
			// 订阅模式下的 PING 回复 ["pong", message]
			message := []byte{}
			if len(args) > 1 {
				message = args[1]
			}
			return reply.MakeMultiBulkReply([][]byte{[]byte("pong"), message})
		}
	}

	db := database.dbSet[client.GetDBIndex()]
	return db.Exec(client, args)
}

func (database *StandaloneDatabase) Close() {
}

// AfterClientClose 连接关闭后清理订阅关系
func (database *StandaloneDatabase) AfterClientClose(c resp.Connection) {
	pubsub.UnsubscribeAll(database.hub, c)
}

// AUTH password
// AUTH username password，只有 default 用户
func (database *StandaloneDatabase) execAuth(c resp.Connection, args [][]byte) resp.Reply {
	if len(args) < 1 || len(args) > 2 {
		return reply.MakeArgNumErrReply("auth")
	}
	if database.requirePass == "" {
		return reply.MakeErrReply("ERR AUTH <password> called without any password configured for the default user. Are you sure your configuration is correct?")
	}
	password := string(args[len(args)-1])
	if (len(args) == 2 && string(args[0]) != "default") || password != database.requirePass {
		c.SetAuthenticated(false)
		return reply.MakeErrReply("WRONGPASS invalid username-password pair or user is disabled.")
	}
	c.SetAuthenticated(true)
	return reply.MakeOkReply()
}

// select 2
// select a
// select 123123131231
func execSelect(c resp.Connection, database *StandaloneDatabase, args [][]byte) resp.Reply {
	dbIndex, err := strconv.Atoi(string(args[0]))
	if err != nil {
		return reply.MakeErrReply("ERR invalid DB index")
	}
	if dbIndex < 0 || dbIndex >= len(database.dbSet) {
		return reply.MakeErrReply("ERR DB index is out of range")
	}
	c.SelectDB(dbIndex)
	return reply.MakeOkReply()
}
