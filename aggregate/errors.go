package aggregate

import "github.com/pingcap/errors"

// Errors that could be occurred during aggregate mutation.
var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvariantBreach = errors.New("invariant breach")
)

// IsInvariantBreach 判断错误是否为一致性破坏
func IsInvariantBreach(err error) bool {
	return err != nil && errors.Cause(err) == ErrInvariantBreach
}
