// Package config -----------------------------
// @file      : config.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2023/12/15 19:40
// -------------------------------------------
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"redis-go-client/lib/logger"
)

// DefaultEnvPrefix REDISGO_POOL__SIZE → pool.size
const DefaultEnvPrefix = "REDISGO_"

// Properties 客户端和开发服务器的全部配置
type Properties struct {
	URL             string           `koanf:"url"`
	ConnectTimeout  time.Duration    `koanf:"connect_timeout"`
	ReadTimeout     time.Duration    `koanf:"read_timeout"`
	WriteTimeout    time.Duration    `koanf:"write_timeout"`
	Parser          string           `koanf:"parser"`
	PubSubQueueSize int              `koanf:"pubsub_queue_size"`
	Pool            PoolProperties   `koanf:"pool"`
	Log             logger.Settings  `koanf:"log"`
	Server          ServerProperties `koanf:"server"`
}

// PoolProperties 连接池配置，Backend 为 lifo 或 commons
type PoolProperties struct {
	Size           int           `koanf:"size"`
	AcquireTimeout time.Duration `koanf:"acquire_timeout"`
	Backend        string        `koanf:"backend"`
	RateLimit      float64       `koanf:"rate_limit"`
	Burst          int           `koanf:"burst"`
}

// ServerProperties 开发服务器配置
type ServerProperties struct {
	Bind        string `koanf:"bind"`
	Port        int    `koanf:"port"`
	RequirePass string `koanf:"requirepass"`
	Databases   int    `koanf:"databases"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"url":               "redis://127.0.0.1:6379/0",
		"connect_timeout":   5 * time.Second,
		"read_timeout":      time.Duration(0),
		"write_timeout":     time.Duration(0),
		"parser":            "stack",
		"pubsub_queue_size": 0,
		"pool": map[string]interface{}{
			"size":            10,
			"acquire_timeout": 5 * time.Second,
			"backend":         "lifo",
			"rate_limit":      0.0,
			"burst":           1,
		},
		"log": map[string]interface{}{
			"path":        "",
			"name":        "redis-go",
			"ext":         "log",
			"time_format": "2006-01-02",
			"level":       "info",
			"json":        false,
		},
		"server": map[string]interface{}{
			"bind":        "127.0.0.1",
			"port":        6399,
			"requirepass": "",
			"databases":   16,
		},
	}
}

// mapProvider 把内存中的 map 作为 koanf 的数据源
type mapProvider map[string]interface{}

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("mapProvider does not support ReadBytes")
}

func (m mapProvider) Read() (map[string]interface{}, error) {
	return m, nil
}

// Default 只包含默认值
func Default() *Properties {
	props, err := Load("")
	if err != nil {
		panic(err)
	}
	return props
}

// Load 优先级：环境变量 > 配置文件 > 默认值
// path 为空或文件不存在时跳过配置文件
func Load(path string) (*Properties, error) {
	k := koanf.New(".")
	if err := k.Load(mapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}
	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, DefaultEnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}
	if err := k.Load(env.Provider(DefaultEnvPrefix, ".", envTransformer), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	props := &Properties{}
	if err := k.Unmarshal("", props); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return props, nil
}
