package registry

import (
	"sync"
	"testing"

	"github.com/lonng/coins/aggregate"
	"github.com/lonng/coins/metrics"
	"github.com/lonng/coins/protocol/message"
	"github.com/lonng/coins/session"
	"github.com/lonng/coins/test/mock"
	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newSession(t *testing.T, r *Registry, sid int64) *mock.NetworkEntity {
	t.Helper()
	entity := mock.NewNetworkEntity()
	require.NoError(t, r.Connect(session.New(sid, entity)))
	return entity
}

func TestScenario(t *testing.T) {
	r := New(nil)
	a := newSession(t, r, 1)
	b := newSession(t, r, 2)
	assert.EqualValues(t, 0, r.Total())

	require.NoError(t, r.Increment(1))
	require.NoError(t, r.Increment(1))
	require.NoError(t, r.Increment(2))

	total, err := r.Query(2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	last, ok := b.LastPush()
	require.True(t, ok)
	assert.Equal(t, mock.Pushed{Event: message.EventTotalUpdate, Payload: int64(3)}, last)
	assert.Empty(t, a.Pushed(), "查询结果只发给发起者")

	require.NoError(t, r.Disconnect(1))
	total, err = r.Query(2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	require.NoError(t, r.Disconnect(2))
	assert.EqualValues(t, 0, r.Total())
	assert.Equal(t, 0, r.Count())
	assert.NoError(t, r.Audit())
}

func TestConnectDoesNotTouchAggregate(t *testing.T) {
	r := New(nil)
	newSession(t, r, 1)
	require.NoError(t, r.Increment(1))

	newSession(t, r, 2)
	assert.EqualValues(t, 1, r.Total())
	assert.EqualValues(t, 0, r.Find(2).LocalCount())

	// 没有点击过的会话断开不影响汇总值
	require.NoError(t, r.Disconnect(2))
	assert.EqualValues(t, 1, r.Total())
}

func TestProtocolViolation(t *testing.T) {
	r := New(nil)
	newSession(t, r, 1)

	t.Run("重复连接", func(t *testing.T) {
		err := r.Connect(session.New(1, mock.NewNetworkEntity()))
		assert.True(t, IsProtocolViolation(err))
		assert.Equal(t, 1, r.Count())
	})

	t.Run("未知会话", func(t *testing.T) {
		assert.True(t, IsProtocolViolation(r.Increment(42)))
		_, err := r.Query(42)
		assert.True(t, IsProtocolViolation(err))
		assert.True(t, IsProtocolViolation(r.Disconnect(42)))
		assert.EqualValues(t, 0, r.Total())
	})

	t.Run("重复断开不会重复扣减", func(t *testing.T) {
		require.NoError(t, r.Increment(1))
		require.NoError(t, r.Increment(1))
		require.NoError(t, r.Disconnect(1))
		assert.EqualValues(t, 0, r.Total())

		err := r.Disconnect(1)
		assert.True(t, IsProtocolViolation(err))
		assert.Contains(t, err.Error(), "session 1")
		assert.EqualValues(t, 0, r.Total())
	})

	t.Run("断开后的事件被拒绝", func(t *testing.T) {
		assert.True(t, IsProtocolViolation(r.Increment(1)))
		assert.EqualValues(t, 0, r.Total())
	})
}

func TestHandle(t *testing.T) {
	r := New(nil)
	entity := newSession(t, r, 1)

	require.NoError(t, r.Handle(1, message.New(message.EventIncrement, nil)))
	require.NoError(t, r.Handle(1, message.New(message.LegacyIncrement, nil)))
	assert.EqualValues(t, 2, r.Total())

	require.NoError(t, r.Handle(1, message.New(message.EventQueryTotal, nil)))
	last, _ := entity.LastPush()
	assert.Equal(t, message.EventTotalUpdate, last.Event)
	assert.EqualValues(t, 2, last.Payload)

	require.NoError(t, r.Handle(1, message.New(message.LegacyQueryTotal, nil)))
	last, _ = entity.LastPush()
	assert.Equal(t, message.LegacyTotalUpdate, last.Event)

	err := r.Handle(1, message.New("steal coins", nil))
	assert.True(t, IsProtocolViolation(err))
	assert.Equal(t, ErrUnknownEvent, errors.Cause(err))

	assert.Equal(t, message.ErrEmptyEvent, r.Handle(1, message.New("", nil)))
	assert.EqualValues(t, 2, r.Total())
}

func TestQueryPushFailure(t *testing.T) {
	r := New(nil)
	entity := newSession(t, r, 1)
	require.NoError(t, entity.Close())

	_, err := r.Query(1)
	assert.Error(t, err)
	assert.False(t, IsProtocolViolation(err))
}

func TestLifetime(t *testing.T) {
	r := New(nil)
	var created, closed []int64
	r.SessionCreated(func(s *session.Session) { created = append(created, s.ID()) })
	r.SessionClosed(func(s *session.Session) {
		closed = append(closed, s.ID())
		// 回调在锁外执行
		assert.Nil(t, r.Find(s.ID()))
	})

	newSession(t, r, 7)
	require.NoError(t, r.Disconnect(7))
	_ = r.Disconnect(7)

	assert.Equal(t, []int64{7}, created)
	assert.Equal(t, []int64{7}, closed)
}

func TestRange(t *testing.T) {
	r := New(nil)
	for sid := int64(1); sid <= 5; sid++ {
		newSession(t, r, sid)
	}

	visited := 0
	r.Range(func(s *session.Session) bool {
		visited++
		return r.Disconnect(s.ID()) == nil
	})
	assert.Equal(t, 5, visited)
	assert.Equal(t, 0, r.Count())

	newSession(t, r, 6)
	newSession(t, r, 7)
	visited = 0
	r.Range(func(s *session.Session) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestAudit(t *testing.T) {
	agg := aggregate.New()
	r := New(agg)
	newSession(t, r, 1)
	require.NoError(t, r.Increment(1))
	assert.NoError(t, r.Audit())

	// 绕过会话直接修改汇总值, 对账应该发现并且不做修正
	require.NoError(t, agg.Increment(10))
	err := r.Audit()
	assert.True(t, aggregate.IsInvariantBreach(err))
	assert.EqualValues(t, 11, r.Total())
	assert.EqualValues(t, 1, r.Sum())
}

func TestMetrics(t *testing.T) {
	r := New(nil)
	reg := prometheus.NewRegistry()
	m := metrics.MustNewMetrics(reg, r)
	r.SetMetrics(m)

	newSession(t, r, 1)
	require.NoError(t, r.Increment(1))
	_, err := r.Query(1)
	require.NoError(t, err)
	_ = r.Increment(2)
	require.NoError(t, r.Audit())

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
	count, err := testutil.GatherAndCount(reg, "coins_protocol_violations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, r.Disconnect(1))
	assert.Equal(t, 0, r.Count())
}

func TestConcurrentIncrements(t *testing.T) {
	const (
		sessions = 32
		clicks   = 500
	)
	r := New(nil)
	for sid := int64(1); sid <= sessions; sid++ {
		newSession(t, r, sid)
	}

	var g errgroup.Group
	for sid := int64(1); sid <= sessions; sid++ {
		sid := sid
		g.Go(func() error {
			for i := 0; i < clicks; i++ {
				if err := r.Increment(sid); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, sessions*clicks, r.Total())
	assert.EqualValues(t, sessions*clicks, r.Sum())
	assert.NoError(t, r.Audit())
}

func TestConcurrentLifecycle(t *testing.T) {
	const sessions = 64
	r := New(nil)

	// 连接, 点击, 查询, 断开并发进行, 同时不停对账
	stop := make(chan struct{})
	var auditor sync.WaitGroup
	auditor.Add(1)
	go func() {
		defer auditor.Done()
		for {
			select {
			case <-stop:
				return
			default:
				assert.NoError(t, r.Audit())
			}
		}
	}()

	var g errgroup.Group
	for sid := int64(1); sid <= sessions; sid++ {
		sid := sid
		g.Go(func() error {
			if err := r.Connect(session.New(sid, mock.NewNetworkEntity())); err != nil {
				return err
			}
			for i := int64(0); i < sid; i++ {
				if err := r.Increment(sid); err != nil {
					return err
				}
			}
			if _, err := r.Query(sid); err != nil {
				return err
			}
			if sid%2 == 0 {
				return r.Disconnect(sid)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(stop)
	auditor.Wait()

	// 剩下奇数 id 的会话, 每个会话点击 sid 次
	var expected int64
	for sid := int64(1); sid <= sessions; sid += 2 {
		expected += sid
	}
	assert.Equal(t, sessions/2, r.Count())
	assert.Equal(t, expected, r.Total())
	assert.NoError(t, r.Audit())
}

func TestLateIncrementRacingDisconnect(t *testing.T) {
	for round := 0; round < 50; round++ {
		r := New(nil)
		newSession(t, r, 1)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = r.Increment(1)
			}
		}()
		go func() {
			defer wg.Done()
			_ = r.Disconnect(1)
		}()
		wg.Wait()

		// 无论事件和断开谁先到, 会话移除后汇总值都回到 0
		assert.Equal(t, 0, r.Count())
		assert.EqualValues(t, 0, r.Total())
	}
}