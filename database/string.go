// Package database -----------------------------
// @file      : string.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/13 20:37
// -------------------------------------------
package database

import (
	"redis-go-client/interface/database"
	"redis-go-client/interface/resp"
	"redis-go-client/resp/reply"
	"strconv"
	"strings"
)

func (db *DB) getAsString(key string) ([]byte, resp.Reply) {
	entity, exists := db.GetEntity(key)
	if !exists {
		return nil, nil
	}
	bytes, ok := entity.Data.([]byte)
	if !ok {
		return nil, &reply.WrongTypeErrReply{}
	}
	return bytes, nil
}

// GET k1
func execGet(db *DB, args [][]byte) resp.Reply {
	bytes, errReply := db.getAsString(string(args[0]))
	if errReply != nil {
		return errReply
	}
	if bytes == nil {
		return reply.MakeNullBulkReply()
	}
	return reply.MakeBulkReply(bytes)
}

// SET k1 v [NX|XX]
func execSet(db *DB, args [][]byte) resp.Reply {
	key := string(args[0])
	entity := &database.DataEntity{
		Data: args[1],
	}
	policy := ""
	for _, arg := range args[2:] {
		switch opt := strings.ToUpper(string(arg)); opt {
		case "NX", "XX":
			if policy != "" && policy != opt {
				return reply.MakeSyntaxErrReply()
			}
			policy = opt
		default:
			return reply.MakeSyntaxErrReply()
		}
	}
	var result int
	switch policy {
	case "NX":
		result = db.PutIfAbsent(key, entity)
	case "XX":
		result = db.PutIfExists(key, entity)
	default:
		db.PutEntity(key, entity)
		return reply.MakeOkReply()
	}
	if result == 0 {
		return reply.MakeNullBulkReply()
	}
	return reply.MakeOkReply()
}

// SETNX k1 v1
func execSetnx(db *DB, args [][]byte) resp.Reply {
	result := db.PutIfAbsent(string(args[0]), &database.DataEntity{
		Data: args[1],
	})
	return reply.MakeIntReply(int64(result))
}

// GETSET k1 v1
func execGetSet(db *DB, args [][]byte) resp.Reply {
	key := string(args[0])
	old, errReply := db.getAsString(key)
	if errReply != nil {
		return errReply
	}
	db.PutEntity(key, &database.DataEntity{
		Data: args[1],
	})
	if old == nil {
		return reply.MakeNullBulkReply()
	}
	return reply.MakeBulkReply(old)
}

// STRLEN k1
func execStrLen(db *DB, args [][]byte) resp.Reply {
	bytes, errReply := db.getAsString(string(args[0]))
	if errReply != nil {
		return errReply
	}
	return reply.MakeIntReply(int64(len(bytes)))
}

// INCR k1，不存在时从 0 开始
func execIncr(db *DB, args [][]byte) resp.Reply {
	key := string(args[0])
	bytes, errReply := db.getAsString(key)
	if errReply != nil {
		return errReply
	}
	var value int64
	if bytes != nil {
		n, err := strconv.ParseInt(string(bytes), 10, 64)
		if err != nil {
			return reply.MakeErrReply("ERR value is not an integer or out of range")
		}
		value = n
	}
	value++
	db.PutEntity(key, &database.DataEntity{
		Data: []byte(strconv.FormatInt(value, 10)),
	})
	return reply.MakeIntReply(value)
}

func init() {
	RegisterCommand("Get", execGet, 2)
	RegisterCommand("Set", execSet, -3)
	RegisterCommand("SetNx", execSetnx, 3)
	RegisterCommand("GetSet", execGetSet, 3)
	RegisterCommand("StrLen", execStrLen, 2)
	RegisterCommand("Incr", execIncr, 2)
}
