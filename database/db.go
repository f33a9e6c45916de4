// Package database -----------------------------
// @file      : db.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/10 20:55
// -------------------------------------------
package database

import (
	"redis-go-client/datastruct/dict"
	"redis-go-client/interface/database"
	"redis-go-client/interface/resp"
	"sync"
)

type DB struct {
	index int
	data  dict.Dict
	// 指令逐条执行，INCR GETSET 这类读改写不会交错
	mu sync.Mutex
}

type ExecFunc func(db *DB, args [][]byte) resp.Reply
type CmdLine = database.CmdLine

func makeDB(index int) *DB {
	return &DB{
		index: index,
		data:  dict.MakeSyncDict(),
	}
}

// Exec 同一个 DB 上的指令逐条执行
func (db *DB) Exec(c resp.Connection, cmdLine CmdLine) resp.Reply {
	cmd, errReply := lookupCommand(cmdLine)
	if errReply != nil {
		return errReply
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	// SET K V → K V
	return cmd.executor(db, cmdLine[1:])
}

func (db *DB) GetEntity(key string) (*database.DataEntity, bool) {
	raw, ok := db.data.Get(key)
	if !ok {
		return nil, false
	}
	entity, _ := raw.(*database.DataEntity)
	return entity, true
}

func (db *DB) PutEntity(key string, entity *database.DataEntity) int {
	return db.data.Put(key, entity)
}

func (db *DB) PutIfExists(key string, entity *database.DataEntity) int {
	return db.data.PutIfExists(key, entity)
}

func (db *DB) PutIfAbsent(key string, entity *database.DataEntity) int {
	return db.data.PutIfAbsent(key, entity)
}

func (db *DB) Removes(keys ...string) (deleted int) {
	for _, key := range keys {
		deleted += db.data.Remove(key)
	}
	return deleted
}

func (db *DB) Flush() {
	db.data.Clear()
}
