// Package database -----------------------------
// @file      : database.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2023/12/25 14:05
// -------------------------------------------
package database

import "redis-go-client/interface/resp"

type CmdLine = [][]byte

type Database interface {
	Exec(client resp.Connection, args [][]byte) resp.Reply
	Close()
	AfterClientClose(c resp.Connection)
}

type DataEntity struct {
	Data interface{}
}
