package node

import "errors"

// Errors that could be occurred during session transport.
var (
	// ErrBrokenPipe represents the low-level connection has broken.
	ErrBrokenPipe = errors.New("broken low-level pipe")
	// ErrBufferExceed indicates that the current session buffer is full and can not receive more data.
	ErrBufferExceed       = errors.New("session send buffer exceed")
	ErrCloseClosedSession = errors.New("close closed session")
	ErrServerClosed       = errors.New("coins: server closed")
	ErrNodeStarted        = errors.New("coins: node already started")
)
