package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)

	logger.Info("hello %v", "abc")
	logger.Info("hello", "abc")
	logger.Error("Settle session failed, ID=%d", int64(7), errors.New("invariant breach"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], "[INFO] hello abc"))
	assert.True(t, strings.HasSuffix(lines[1], "[INFO] hello abc"))
	assert.True(t, strings.HasSuffix(lines[2], "[ERROR] Settle session failed, ID=7 - invariant breach"))
	// 调用位置指向业务代码
	assert.Contains(t, lines[0], "console_logger_test.go")
}
