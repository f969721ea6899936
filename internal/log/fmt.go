package log

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatArgs 把日志参数转换为一行文本, 第一个参数作为格式串:
//
//	FormatArgs("session %d closed", 7)            // "session 7 closed"
//	FormatArgs("session closed", 7)               // "session closed 7"
//	FormatArgs("push %v failed.", "x", err)       // "push x failed. - <err>"
//	FormatArgs("%v %v", 1)                        // "1 %v"
//
// 只识别 %d %s %v %t %f %q 和 %%, 参数多于占位符时以空格追加, 末尾的 error 以 " - " 追加.
func FormatArgs(args ...any) string {
	switch len(args) {
	case 0:
		return ""
	case 1:
		return toString(args[0])
	default:
		return Format(toString(args[0]), args[1:]...)
	}
}

// Format 按 FormatArgs 的规则格式化
func Format(format string, args ...any) string {
	var trailing error
	if n := len(args); n > 0 {
		if err, ok := args[n-1].(error); ok {
			trailing = err
			args = args[:n-1]
		}
	}

	var sb strings.Builder
	next := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i == len(format)-1 {
			sb.WriteByte(c)
			continue
		}
		verb := format[i+1]
		i++
		switch {
		case verb == '%':
			sb.WriteByte('%')
		case next >= len(args) || !strings.ContainsRune("dsvtfq", rune(verb)):
			sb.WriteByte('%')
			sb.WriteByte(verb)
		case verb == 'q':
			sb.WriteString(strconv.Quote(toString(args[next])))
			next++
		default:
			sb.WriteString(toString(args[next]))
			next++
		}
	}

	for _, arg := range args[next:] {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(toString(arg))
	}

	if trailing != nil {
		sb.WriteString(" - ")
		sb.WriteString(trailing.Error())
	}
	return sb.String()
}

// toString 转换为字符串
func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(val)
	}
}
