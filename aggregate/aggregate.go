package aggregate

import (
	"sync/atomic"

	"github.com/lonng/coins/internal/log"
	"github.com/pingcap/errors"
)

// Aggregate 全局汇总值, 只能通过 Increment/Decrement 修改.
// 加减满足交换律和结合律, 不同会话之间无需排序, 只要求每次操作本身是原子的.
type Aggregate struct {
	total atomic.Int64
}

// New 构造函数, 初始值为 0
func New() *Aggregate {
	return &Aggregate{}
}

// Increment 原子地增加 n, n 必须为正数
func (a *Aggregate) Increment(n int64) error {
	if n <= 0 {
		return errors.Annotatef(ErrInvalidAmount, "increment by %d", n)
	}
	a.total.Add(n)
	return nil
}

// Decrement 原子地减少 n, n 不能为负数.
// 结果为负说明调用方传入了从未加过的值, 记录错误并返回 ErrInvariantBreach, 不做修正.
func (a *Aggregate) Decrement(n int64) error {
	if n < 0 {
		return errors.Annotatef(ErrInvalidAmount, "decrement by %d", n)
	}
	if n == 0 {
		return nil
	}
	total := a.total.Add(-n)
	if total < 0 {
		log.Error("Aggregate total went negative, Decrement=%d, Total=%d", n, total)
		return errors.Annotatef(ErrInvariantBreach, "total %d after decrement by %d", total, n)
	}
	return nil
}

// Total 返回当前值的快照
func (a *Aggregate) Total() int64 {
	return a.total.Load()
}
