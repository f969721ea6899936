package registry

import (
	"github.com/lonng/coins/aggregate"
	"github.com/lonng/coins/internal/env"
	"github.com/lonng/coins/internal/log"
	"github.com/pingcap/errors"
)

// Audit 对账: 在没有计数变更进行中时比较本地计数之和与汇总值.
// 不一致或汇总值为负时记录错误并返回 ErrInvariantBreach, 不做任何修正.
func (r *Registry) Audit() error {
	r.mu.Lock()
	sum := r.sum()
	total := r.agg.Total()
	count := len(r.sessions)
	r.mu.Unlock()

	r.metrics.Audit()

	if total < 0 || sum != total {
		r.metrics.InvariantBreach()
		log.Error("Audit failed, Sessions=%d, Sum=%d, Total=%d", count, sum, total)
		return errors.Annotatef(aggregate.ErrInvariantBreach, "sum %d, total %d, sessions %d", sum, total, count)
	}

	if env.Debug {
		log.Info("Audit passed, Sessions=%d, Total=%d", count, total)
	}
	return nil
}
