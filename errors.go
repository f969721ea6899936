package coins

import "errors"

// Errors that could be occurred during engine lifecycle.
var (
	ErrRunning    = errors.New("coins has running")
	ErrNotRunning = errors.New("coins is not running")
)
