// Package reply -----------------------------
// @file      : convert.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/18 10:12
// -------------------------------------------
package reply

import (
	"fmt"
	"redis-go-client/interface/resp"
	"strconv"
)

// IsNull "$-1" 或 "*-1"
func IsNull(r resp.Reply) bool {
	switch r.(type) {
	case *NullBulkReply, *NullArrayReply, NullBulkReply, NullArrayReply:
		return true
	}
	return false
}

// Bytes 取出字符串类帧的内容，空值返回 nil
// r 为 nil（流水线模式下命令尚未发送）时返回零值
func Bytes(r resp.Reply) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	switch v := r.(type) {
	case *BulkReply:
		return v.Arg, nil
	case *StatusReply:
		return []byte(v.Status), nil
	case *IntReply:
		return []byte(strconv.FormatInt(v.Code, 10)), nil
	case *StandardErrReply:
		return nil, v
	}
	if IsNull(r) {
		return nil, nil
	}
	return nil, fmt.Errorf("unexpected reply %q", r.ToBytes())
}

func String(r resp.Reply) (string, error) {
	b, err := Bytes(r)
	return string(b), err
}

func Int64(r resp.Reply) (int64, error) {
	if r == nil {
		return 0, nil
	}
	switch v := r.(type) {
	case *IntReply:
		return v.Code, nil
	case *BulkReply:
		return strconv.ParseInt(string(v.Arg), 10, 64)
	case *StandardErrReply:
		return 0, v
	}
	return 0, fmt.Errorf("unexpected reply %q", r.ToBytes())
}

// Strings 数组帧转为字符串切片，空值元素为 ""
func Strings(r resp.Reply) ([]string, error) {
	if r == nil {
		return nil, nil
	}
	arr, ok := r.(*ArrayReply)
	if !ok {
		if IsNull(r) {
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected reply %q", r.ToBytes())
	}
	result := make([]string, 0, len(arr.Items))
	for _, item := range arr.Items {
		s, err := String(item)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}
