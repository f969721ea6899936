package log

import (
	"io"
	"log"
	"os"
)

// ConsoleLogger 输出到标准输出的日志, 每行带级别前缀
type ConsoleLogger log.Logger

// NewConsoleLogger 构造函数, 输出到 os.Stdout
func NewConsoleLogger() *ConsoleLogger {
	return NewWriterLogger(os.Stdout)
}

// NewWriterLogger 输出到指定 writer
func NewWriterLogger(w io.Writer) *ConsoleLogger {
	logger := log.New(w, "", log.LstdFlags|log.Lshortfile)
	return (*ConsoleLogger)(logger)
}

func (c *ConsoleLogger) Info(args ...any) {
	_ = (*log.Logger)(c).Output(2, "[INFO] "+FormatArgs(args...))
}

func (c *ConsoleLogger) Error(args ...any) {
	_ = (*log.Logger)(c).Output(2, "[ERROR] "+FormatArgs(args...))
}

func (c *ConsoleLogger) Fatal(args ...any) {
	_ = (*log.Logger)(c).Output(2, "[FATAL] "+FormatArgs(args...))
	os.Exit(1)
}
