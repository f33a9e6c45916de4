// Package reply -----------------------------
// @file      : command.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/17 13:40
// -------------------------------------------
package reply

import (
	"errors"
	"fmt"
	"redis-go-client/interface/resp"
	"strconv"
)

// ErrInvalidArgumentType 命令参数只能是字符串、字节切片或数字
var ErrInvalidArgumentType = errors.New("invalid argument type")

// MakeCommand 把命令名和参数编码为 RESP 数组
// "SET key 1" → "*3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$1\r\n1\r\n"
func MakeCommand(name string, args ...interface{}) (*MultiBulkReply, error) {
	cmdLine := make([][]byte, 0, len(args)+1)
	cmdLine = append(cmdLine, []byte(name))
	for i, arg := range args {
		b, err := ArgToBytes(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		cmdLine = append(cmdLine, b)
	}
	return MakeMultiBulkReply(cmdLine), nil
}

// ArgToBytes 单个参数转为字节，数字使用十进制文本
func ArgToBytes(arg interface{}) ([]byte, error) {
	switch v := arg.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		if v == nil {
			return []byte{}, nil
		}
		return v, nil
	case int:
		return []byte(strconv.Itoa(v)), nil
	case int8:
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	case int16:
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	case int32:
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return []byte(strconv.FormatInt(v, 10)), nil
	case uint:
		return []byte(strconv.FormatUint(uint64(v), 10)), nil
	case uint8:
		return []byte(strconv.FormatUint(uint64(v), 10)), nil
	case uint16:
		return []byte(strconv.FormatUint(uint64(v), 10)), nil
	case uint32:
		return []byte(strconv.FormatUint(uint64(v), 10)), nil
	case uint64:
		return []byte(strconv.FormatUint(v, 10)), nil
	case float32:
		return []byte(strconv.FormatFloat(float64(v), 'f', -1, 32)), nil
	case float64:
		return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrInvalidArgumentType, arg)
}

// ToArgs 把解码得到的数组帧还原为命令行，元素必须都是 bulk string
func ToArgs(r resp.Reply) ([][]byte, bool) {
	switch v := r.(type) {
	case *MultiBulkReply:
		return v.Args, true
	case *ArrayReply:
		args := make([][]byte, 0, len(v.Items))
		for _, item := range v.Items {
			bulk, ok := item.(*BulkReply)
			if !ok {
				return nil, false
			}
			args = append(args, bulk.Arg)
		}
		return args, true
	}
	return nil, false
}
