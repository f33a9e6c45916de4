// Package database -----------------------------
// @file      : command.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/12 18:28
// -------------------------------------------
package database

import (
	"redis-go-client/interface/resp"
	"redis-go-client/resp/reply"
	"strings"
)

// 单个 DB 支持的指令表，连接级别的指令（auth select 订阅）在 StandaloneDatabase 中处理
var cmdTable = make(map[string]*command)

type command struct {
	executor ExecFunc
	// 参数的数量（包括指令名），负数表示至少 -arity 个
	arity int
}

func RegisterCommand(name string, executor ExecFunc, arity int) {
	cmdTable[strings.ToLower(name)] = &command{
		executor: executor,
		arity:    arity,
	}
}

// lookupCommand 查找指令并检查参数个数，失败时返回错误帧
func lookupCommand(cmdLine CmdLine) (*command, resp.Reply) {
	cmdName := strings.ToLower(string(cmdLine[0]))
	cmd, ok := cmdTable[cmdName]
	if !ok {
		return nil, reply.MakeErrReply("ERR unknown command '" + cmdName + "'")
	}
	if !cmd.validateArity(len(cmdLine)) {
		return nil, reply.MakeArgNumErrReply(cmdName)
	}
	return cmd, nil
}

// SET K V → arity = 3
// EXISTS k1 k2 k3 ... → arity = -2
func (cmd *command) validateArity(argNum int) bool {
	if cmd.arity > 0 {
		return argNum == cmd.arity
	}
	return argNum >= -cmd.arity
}
