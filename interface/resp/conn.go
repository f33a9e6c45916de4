// Package resp -----------------------------
// @file      : conn.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2023/12/23 12:45
// -------------------------------------------
package resp

// Connection 服务端视角的一个客户端连接
type Connection interface {
	Write([]byte) error
	GetDBIndex() int
	SelectDB(int)

	Authenticated() bool
	SetAuthenticated(bool)

	// 发布订阅，channel 和 pattern 分开记录
	Subscribe(channel string)
	UnSubscribe(channel string)
	PSubscribe(pattern string)
	PUnSubscribe(pattern string)
	SubsCount() int
	GetChannels() []string
	GetPatterns() []string
}
