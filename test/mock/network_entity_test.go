package mock_test

import (
	"testing"

	"github.com/lonng/coins/session"
	"github.com/lonng/coins/test/mock"
	"github.com/stretchr/testify/assert"
)

var _ session.NetworkEntity = (*mock.NetworkEntity)(nil)

func TestNetworkEntity(t *testing.T) {
	entity := mock.NewNetworkEntity()

	assert.Equal(t, "mock-addr", entity.RemoteAddr().String())
	assert.Equal(t, "mock", entity.RemoteAddr().Network())

	_, ok := entity.LastPush()
	assert.False(t, ok)

	assert.Nil(t, entity.Push("total-update", int64(3)))
	p, ok := entity.LastPush()
	assert.True(t, ok)
	assert.Equal(t, mock.Pushed{Event: "total-update", Payload: int64(3)}, p)
	assert.Len(t, entity.Pushed(), 1)

	assert.Nil(t, entity.Close())
	assert.True(t, entity.Closed())
	assert.Equal(t, mock.ErrClosed, entity.Close())
	assert.Equal(t, mock.ErrClosed, entity.Push("total-update", int64(4)))
	assert.Len(t, entity.Pushed(), 1)
}
