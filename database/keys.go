// Package database -----------------------------
// @file      : keys.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/12 20:22
// -------------------------------------------
package database

import (
	"path"
	"redis-go-client/interface/resp"
	"redis-go-client/resp/reply"
	"sort"
)

// DEL k1 k2 k3 ...
func execDel(db *DB, args [][]byte) resp.Reply {
	keys := make([]string, len(args))
	for i, v := range args {
		keys[i] = string(v)
	}
	deleted := db.Removes(keys...)
	return reply.MakeIntReply(int64(deleted))
}

// EXISTS k1 k2 k3 ...，重复的 key 重复计数
func execExists(db *DB, args [][]byte) resp.Reply {
	result := int64(0)
	for _, arg := range args {
		if _, exists := db.GetEntity(string(arg)); exists {
			result++
		}
	}
	return reply.MakeIntReply(result)
}

// KEYS pattern，glob 规则与 PSUBSCRIBE 相同
func execKeys(db *DB, args [][]byte) resp.Reply {
	pattern := string(args[0])
	if _, err := path.Match(pattern, ""); err != nil {
		return reply.MakeErrReply("ERR illegal pattern " + pattern)
	}
	result := make([][]byte, 0)
	for _, key := range db.data.Keys() {
		if matched, _ := path.Match(pattern, key); matched {
			result = append(result, []byte(key))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return string(result[i]) < string(result[j])
	})
	return reply.MakeMultiBulkReply(result)
}

// FLUSHDB
func execFlushDB(db *DB, args [][]byte) resp.Reply {
	db.Flush()
	return reply.MakeOkReply()
}

func init() {
	RegisterCommand("Del", execDel, -2)
	RegisterCommand("Exists", execExists, -2)
	RegisterCommand("Keys", execKeys, 2)
	RegisterCommand("FlushDB", execFlushDB, -1)
}
