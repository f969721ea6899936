package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "coins"

// Source 提供汇总值和活跃会话数, 采集时读取
type Source interface {
	Total() int64
	Count() int
}

// Metrics exposes Prometheus collectors that report session and aggregate activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	sessionsCreated    prometheus.Counter
	sessionsClosed     prometheus.Counter
	increments         prometheus.Counter
	queries            prometheus.Counter
	protocolViolations *prometheus.CounterVec
	invariantBreaches  prometheus.Counter
	audits             prometheus.Counter
}

// MustNewMetrics 在 reg 上注册所有指标, 注册失败时 panic.
// reg 为 nil 时使用 prometheus.DefaultRegisterer, 测试中应传入新的 Registry.
func MustNewMetrics(reg prometheus.Registerer, src Source) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of sessions registered.",
		}),
		sessionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_closed_total",
			Help:      "Total number of sessions removed after settlement.",
		}),
		increments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "increments_total",
			Help:      "Total number of applied increment events.",
		}),
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of answered total queries.",
		}),
		protocolViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_violations_total",
			Help:      "Signals rejected because the session was not active or the event was unknown.",
		}, []string{"event"}),
		invariantBreaches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invariant_breaches_total",
			Help:      "Times the aggregate disagreed with the sum of session counts or went negative.",
		}),
		audits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audits_total",
			Help:      "Total number of reconciliation passes.",
		}),
	}

	collectors := []prometheus.Collector{
		m.sessionsCreated,
		m.sessionsClosed,
		m.increments,
		m.queries,
		m.protocolViolations,
		m.invariantBreaches,
		m.audits,
	}
	if src != nil {
		collectors = append(collectors,
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "total",
				Help:      "Current value of the global aggregate.",
			}, func() float64 { return float64(src.Total()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Number of currently registered sessions.",
			}, func() float64 { return float64(src.Count()) }),
		)
	}
	reg.MustRegister(collectors...)
	return m
}

// SessionCreated 会话注册
func (m *Metrics) SessionCreated() {
	if m == nil {
		return
	}
	m.sessionsCreated.Inc()
}

// SessionClosed 会话移除
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessionsClosed.Inc()
}

// Increment 成功的点击
func (m *Metrics) Increment() {
	if m == nil {
		return
	}
	m.increments.Inc()
}

// Query 成功的查询
func (m *Metrics) Query() {
	if m == nil {
		return
	}
	m.queries.Inc()
}

// ProtocolViolation 被拒绝的信号, event 应该来自有限集合, 避免标签爆炸
func (m *Metrics) ProtocolViolation(event string) {
	if m == nil {
		return
	}
	m.protocolViolations.WithLabelValues(event).Inc()
}

// InvariantBreach 一致性破坏
func (m *Metrics) InvariantBreach() {
	if m == nil {
		return
	}
	m.invariantBreaches.Inc()
}

// Audit 一次对账
func (m *Metrics) Audit() {
	if m == nil {
		return
	}
	m.audits.Inc()
}
