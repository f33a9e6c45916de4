// Package logger -----------------------------
// @file      : logger.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2023/12/15 19:20
// -------------------------------------------
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Settings 存储日志的配置，Path 为空时只输出到标准输出
type Settings struct {
	Path       string `koanf:"path"`
	Name       string `koanf:"name"`
	Ext        string `koanf:"ext"`
	TimeFormat string `koanf:"time_format"`
	Level      string `koanf:"level"`
	JSON       bool   `koanf:"json"`
}

// Setup 创建日志对象并设为 hclog 的默认日志
func Setup(settings *Settings) (hclog.Logger, error) {
	var out io.Writer = os.Stdout
	if settings.Path != "" {
		// 生成日志文件的名称
		fileName := fmt.Sprintf("%s-%s.%s",
			settings.Name,
			time.Now().Format(settings.TimeFormat),
			settings.Ext)
		logFile, err := mustOpen(fileName, settings.Path)
		if err != nil {
			return nil, fmt.Errorf("logging.Setup err: %w", err)
		}
		out = io.MultiWriter(os.Stdout, logFile)
	}
	l := hclog.New(&hclog.LoggerOptions{
		Name:       settings.Name,
		Level:      hclog.LevelFromString(settings.Level),
		Output:     out,
		JSONFormat: settings.JSON,
	})
	hclog.SetDefault(l)
	return l, nil
}

// Discard 不输出任何内容
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}

// 以下为包级别的便捷方法，写入默认日志

func Debug(msg string, args ...interface{}) {
	hclog.Default().Debug(msg, args...)
}

func Info(msg string, args ...interface{}) {
	hclog.Default().Info(msg, args...)
}

func Warn(msg string, args ...interface{}) {
	hclog.Default().Warn(msg, args...)
}

func Error(msg string, args ...interface{}) {
	hclog.Default().Error(msg, args...)
}
