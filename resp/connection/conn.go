// Package connection -----------------------------
// @file      : conn.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/3 11:04
// -------------------------------------------
package connection

import (
	"net"
	"redis-go-client/lib/sync/wait"
	"sync"
	"time"
)

// Connection 开发服务器一侧的客户端连接
type Connection struct {
	conn         net.Conn
	waitingReply wait.Wait
	mu           sync.Mutex

	// 以下字段只在处理该连接的协程中访问
	selectedDB    int
	authenticated bool
	channels      map[string]struct{}
	patterns      map[string]struct{}
}

func NewConn(conn net.Conn) *Connection {
	return &Connection{
		conn: conn,
	}
}

func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Connection) Close() error {
	// 等待正在发送的回复
	c.waitingReply.WaitWithTimeout(10 * time.Second)
	return c.conn.Close()
}

// Write 给客户端发送数据，发布消息时会被其它连接的协程调用
func (c *Connection) Write(bytes []byte) error {
	if len(bytes) == 0 {
		return nil
	}
	c.mu.Lock()
	c.waitingReply.Add(1)
	defer func() {
		c.waitingReply.Done()
		c.mu.Unlock()
	}()
	_, err := c.conn.Write(bytes)
	return err
}

func (c *Connection) GetDBIndex() int {
	return c.selectedDB
}

func (c *Connection) SelectDB(dbNum int) {
	c.selectedDB = dbNum
}

func (c *Connection) Authenticated() bool {
	return c.authenticated
}

func (c *Connection) SetAuthenticated(ok bool) {
	c.authenticated = ok
}

func (c *Connection) Subscribe(channel string) {
	if c.channels == nil {
		c.channels = make(map[string]struct{})
	}
	c.channels[channel] = struct{}{}
}

func (c *Connection) UnSubscribe(channel string) {
	delete(c.channels, channel)
}

func (c *Connection) PSubscribe(pattern string) {
	if c.patterns == nil {
		c.patterns = make(map[string]struct{})
	}
	c.patterns[pattern] = struct{}{}
}

func (c *Connection) PUnSubscribe(pattern string) {
	delete(c.patterns, pattern)
}

// SubsCount 订阅的频道和模式总数
func (c *Connection) SubsCount() int {
	return len(c.channels) + len(c.patterns)
}

func (c *Connection) GetChannels() []string {
	return keys(c.channels)
}

func (c *Connection) GetPatterns() []string {
	return keys(c.patterns)
}

func keys(m map[string]struct{}) []string {
	result := make([]string, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	return result
}
