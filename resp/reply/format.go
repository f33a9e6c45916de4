// Package reply -----------------------------
// @file      : format.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/19 16:30
// -------------------------------------------
package reply

import (
	"redis-go-client/interface/resp"
	"strconv"
	"strings"
)

// Format 以 redis-cli 的风格渲染一个帧
func Format(r resp.Reply) string {
	var sb strings.Builder
	format(&sb, r, "")
	return sb.String()
}

func format(sb *strings.Builder, r resp.Reply, indent string) {
	switch v := r.(type) {
	case *StatusReply:
		sb.WriteString(v.Status)
	case *StandardErrReply:
		sb.WriteString("(error) " + v.Status)
	case *IntReply:
		sb.WriteString("(integer) " + strconv.FormatInt(v.Code, 10))
	case *BulkReply:
		sb.WriteString(strconv.Quote(string(v.Arg)))
	case *ArrayReply:
		if len(v.Items) == 0 {
			sb.WriteString("(empty array)")
			return
		}
		width := len(strconv.Itoa(len(v.Items)))
		for i, item := range v.Items {
			prefix := strconv.Itoa(i+1) + ") "
			prefix = strings.Repeat(" ", width-len(strconv.Itoa(i+1))) + prefix
			if i > 0 {
				sb.WriteString("\n" + indent)
			}
			sb.WriteString(prefix)
			format(sb, item, indent+strings.Repeat(" ", len(prefix)))
		}
	default:
		if r == nil || IsNull(r) {
			sb.WriteString("(nil)")
			return
		}
		sb.WriteString(strings.TrimSuffix(string(r.ToBytes()), CRLF))
	}
}
