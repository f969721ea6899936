package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	total int64
	count int
}

func (f *fakeSource) Total() int64 { return f.total }
func (f *fakeSource) Count() int   { return f.count }

func TestMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	src := &fakeSource{}
	m := MustNewMetrics(reg, src)

	m.SessionCreated()
	m.SessionCreated()
	m.SessionClosed()
	m.Increment()
	m.Query()
	m.ProtocolViolation("disconnect")
	m.ProtocolViolation("disconnect")
	m.InvariantBreach()
	m.Audit()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsClosed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.increments))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.protocolViolations.WithLabelValues("disconnect")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invariantBreaches))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.audits))

	src.total, src.count = 5, 2
	expected := `
# HELP coins_sessions_active Number of currently registered sessions.
# TYPE coins_sessions_active gauge
coins_sessions_active 2
# HELP coins_total Current value of the global aggregate.
# TYPE coins_total gauge
coins_total 5
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "coins_total", "coins_sessions_active"))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SessionCreated()
		m.SessionClosed()
		m.Increment()
		m.Query()
		m.ProtocolViolation("increment")
		m.InvariantBreach()
		m.Audit()
	})
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustNewMetrics(reg, nil)
	assert.Panics(t, func() { MustNewMetrics(reg, nil) })
}
