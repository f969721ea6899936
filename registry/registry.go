package registry

import (
	"sync"

	"github.com/lonng/coins/aggregate"
	"github.com/lonng/coins/internal/env"
	"github.com/lonng/coins/internal/log"
	"github.com/lonng/coins/metrics"
	"github.com/lonng/coins/protocol/message"
	"github.com/lonng/coins/session"
	"github.com/pingcap/errors"
)

// 信号名称, 用于日志和协议违规统计
const (
	signalConnect    = "connect"
	signalDisconnect = "disconnect"
	signalUnknown    = "unknown"
)

// SessionWalkFunc 遍历会话的函数, 返回 true 时继续遍历, 返回 false 时停止遍历
type SessionWalkFunc func(*session.Session) bool

// Registry 活跃会话表, 负责会话的状态迁移 ABSENT -> ACTIVE -> ABSENT,
// 以及本地计数和全局汇总值之间的一致性.
//
// Increment/Query 持有读锁, 不同会话可以并行; Connect/Disconnect/Audit 持有写锁,
// 因此对账时没有正在进行中的计数变更. 持锁期间不做任何网络 I/O.
type Registry struct {
	agg      *aggregate.Aggregate
	mu       sync.RWMutex
	sessions map[int64]*session.Session
	metrics  *metrics.Metrics
	lifetime lifetime
}

// New 构造函数, agg 为 nil 时创建新的汇总值
func New(agg *aggregate.Aggregate) *Registry {
	if agg == nil {
		agg = aggregate.New()
	}
	return &Registry{
		agg:      agg,
		sessions: make(map[int64]*session.Session),
	}
}

// SetMetrics 设置指标收集器, nil 表示不收集
func (r *Registry) SetMetrics(m *metrics.Metrics) {
	r.metrics = m
}

// Aggregate 返回全局汇总值
func (r *Registry) Aggregate() *aggregate.Aggregate {
	return r.agg
}

// SessionCreated 设置会话注册后的回调
func (r *Registry) SessionCreated(h LifetimeHandler) {
	r.lifetime.created(h)
}

// SessionClosed 设置会话移除后的回调
func (r *Registry) SessionClosed(h LifetimeHandler) {
	r.lifetime.closed(h)
}

// Connect 注册新会话, 本地计数为 0, 不修改汇总值.
// 同一个 id 重复注册视为协议违规.
func (r *Registry) Connect(s *session.Session) error {
	r.mu.Lock()
	if _, ok := r.sessions[s.ID()]; ok {
		r.mu.Unlock()
		return r.reject(s.ID(), signalConnect)
	}
	r.sessions[s.ID()] = s
	r.mu.Unlock()

	if env.Debug {
		log.Info("Session connected, ID=%d, Remote=%s", s.ID(), s.RemoteAddr())
	}
	r.metrics.SessionCreated()
	r.lifetime.fireCreated(s)
	return nil
}

// Increment 本地计数加 1, 汇总值加 1
func (r *Registry) Increment(sid int64) error {
	r.mu.RLock()
	s, ok := r.sessions[sid]
	if !ok {
		r.mu.RUnlock()
		return r.reject(sid, message.EventIncrement)
	}
	err := s.Incr(func() error { return r.agg.Increment(1) })
	r.mu.RUnlock()

	if errors.Cause(err) == session.ErrSessionFinished {
		return r.reject(sid, message.EventIncrement)
	}
	if err != nil {
		return err
	}
	r.metrics.Increment()
	return nil
}

// Query 读取汇总值并推送 total-update, 只推送给发起查询的会话
func (r *Registry) Query(sid int64) (int64, error) {
	return r.query(sid, message.EventQueryTotal, message.EventTotalUpdate)
}

func (r *Registry) query(sid int64, event, reply string) (int64, error) {
	r.mu.RLock()
	s, ok := r.sessions[sid]
	total := r.agg.Total()
	r.mu.RUnlock()

	if !ok {
		return 0, r.reject(sid, event)
	}
	r.metrics.Query()
	if err := s.Push(reply, total); err != nil {
		return total, errors.Annotatef(err, "push %s to session %d", reply, sid)
	}
	return total, nil
}

// Disconnect 从汇总值中减去本地计数并移除会话, 每个会话只会生效一次,
// 之后的 Disconnect 视为协议违规, 不会重复扣减.
func (r *Registry) Disconnect(sid int64) error {
	r.mu.Lock()
	s, ok := r.sessions[sid]
	if !ok {
		r.mu.Unlock()
		return r.reject(sid, signalDisconnect)
	}
	delete(r.sessions, sid)
	err := s.Finish(r.agg.Decrement)
	r.mu.Unlock()

	if env.Debug {
		log.Info("Session disconnected, ID=%d, LocalCount=%d", sid, s.LocalCount())
	}
	r.metrics.SessionClosed()
	r.lifetime.fireClosed(s)

	if aggregate.IsInvariantBreach(err) {
		r.metrics.InvariantBreach()
	}
	return err
}

// Count 返回活跃会话数
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Find 返回指定 id 的活跃会话, 不存在时返回 nil
func (r *Registry) Find(sid int64) *session.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sessions[sid]
}

// Total 返回汇总值快照
func (r *Registry) Total() int64 {
	return r.agg.Total()
}

// Sum 返回所有活跃会话本地计数之和
func (r *Registry) Sum() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sum()
}

func (r *Registry) sum() int64 {
	var sum int64
	for _, s := range r.sessions {
		sum += s.LocalCount()
	}
	return sum
}

// Range 遍历活跃会话快照, 回调中可以安全地调用 Registry 的其他方法
func (r *Registry) Range(fn SessionWalkFunc) {
	for _, s := range r.snapshot() {
		if !fn(s) {
			return
		}
	}
}

func (r *Registry) snapshot() []*session.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*session.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

func (r *Registry) reject(sid int64, event string) error {
	r.metrics.ProtocolViolation(event)
	return violation(sid, event)
}
