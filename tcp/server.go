// Package tcp -----------------------------
// @file      : server.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2023/12/15 19:34
// -------------------------------------------
package tcp

import (
	"context"
	"net"
	"os"
	"os/signal"
	"redis-go-client/interface/tcp"
	"redis-go-client/lib/logger"
	"sync"
	"syscall"
)

// Config tcp连接配置信息
type Config struct {
	Address string
}

// ListenAndServeWithSignal 收到退出信号后关闭监听和所有连接
func ListenAndServeWithSignal(cfg *Config, handler tcp.Handler) error {
	closeChan := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)
	// 转发信号到自定义的 closeChan
	go func() {
		sig := <-sigChan
		logger.Info("received signal", "signal", sig.String())
		close(closeChan)
	}()

	listener, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return err
	}
	logger.Info("start listen", "address", listener.Addr().String())
	ListenAndServe(listener, handler, closeChan)
	return nil
}

// ListenAndServe 阻塞到 listener 关闭，并等待已有连接处理结束
func ListenAndServe(listener net.Listener, handler tcp.Handler, closeChan <-chan struct{}) {
	var closeOnce sync.Once
	shutdown := func() {
		closeOnce.Do(func() {
			_ = listener.Close()
			_ = handler.Close()
		})
	}
	go func() {
		<-closeChan
		logger.Info("shutting down")
		shutdown()
	}()

	ctx := context.Background()
	var waitDone sync.WaitGroup
	for {
		conn, err := listener.Accept()
		if err != nil {
			break
		}
		logger.Debug("accepted link", "remote", conn.RemoteAddr().String())
		waitDone.Add(1)
		// 一个协程处理一个连接
		go func() {
			defer waitDone.Done()
			handler.Handle(ctx, conn)
		}()
	}
	// 出现错误跳出循环时关闭已存在的连接并等待处理结束
	shutdown()
	waitDone.Wait()
}
