package log

import (
	"go.uber.org/zap"
)

// ZapLogger 基于 zap 的日志, 参数先按 FormatArgs 格式化再输出
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger 构造函数, 调用方负责 Sync
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	// 跳过 facade 这一层, 让 caller 指向业务代码
	return &ZapLogger{sugar: logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (z *ZapLogger) Info(args ...any) {
	z.sugar.Info(FormatArgs(args...))
}

func (z *ZapLogger) Error(args ...any) {
	z.sugar.Error(FormatArgs(args...))
}

func (z *ZapLogger) Fatal(args ...any) {
	z.sugar.Fatal(FormatArgs(args...))
}
