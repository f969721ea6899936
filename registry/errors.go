package registry

import "github.com/pingcap/errors"

// Errors that could be occurred during session signal handling.
var (
	ErrProtocolViolation = errors.New("protocol violation")
	ErrUnknownEvent      = errors.New("unknown event")
)

// IsProtocolViolation 判断错误是否为协议违规, 包括未知事件
func IsProtocolViolation(err error) bool {
	if err == nil {
		return false
	}
	cause := errors.Cause(err)
	return cause == ErrProtocolViolation || cause == ErrUnknownEvent
}

func violation(sid int64, event string) error {
	return errors.Annotatef(ErrProtocolViolation, "session %d is not active, event=%s", sid, event)
}
