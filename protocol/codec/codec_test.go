package codec

import (
	"testing"

	"github.com/lonng/coins/protocol/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestLookup(t *testing.T) {
	for name, expected := range map[string]string{
		"":         "json",
		"JSON":     "json",
		"proto":    "proto",
		"protobuf": "proto",
	} {
		c, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, expected, c.Name())
	}
	_, err := Lookup("xml")
	assert.Equal(t, ErrUnknownCodec, err)
}

func TestJSONCodec(t *testing.T) {
	c := NewJSON()
	assert.False(t, c.Binary())

	data, err := c.Encode(message.New(message.EventTotalUpdate, int64(3)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"total-update","payload":3}`, string(data))

	data, err = c.Encode(message.New(message.EventIncrement, nil))
	require.NoError(t, err)
	assert.Equal(t, `{"event":"increment"}`, string(data))

	m, err := c.Decode([]byte(`{"event":"query-total"}`))
	require.NoError(t, err)
	assert.Equal(t, message.EventQueryTotal, m.Event)
	assert.Nil(t, m.Payload)

	m, err = c.Decode([]byte(`{"event":"total-update","payload":7}`))
	require.NoError(t, err)
	assert.EqualValues(t, 7, m.Payload)

	m, err = c.Decode([]byte(`{"event":"increment","payload":null}`))
	require.NoError(t, err)
	assert.Nil(t, m.Payload)

	_, err = c.Decode([]byte(`{"payload":1}`))
	assert.Equal(t, message.ErrEmptyEvent, err)
	_, err = c.Decode([]byte(`not json`))
	assert.Error(t, err)
	_, err = c.Encode(message.New("", nil))
	assert.Equal(t, message.ErrEmptyEvent, err)
}

func TestProtoCodec(t *testing.T) {
	c := NewProto()
	assert.True(t, c.Binary())

	data, err := c.Encode(message.New(message.EventTotalUpdate, int64(3)))
	require.NoError(t, err)

	// 帧内容是标准的 google.protobuf.Struct
	st := &structpb.Struct{}
	require.NoError(t, proto.Unmarshal(data, st))
	assert.Equal(t, "total-update", st.GetFields()["event"].GetStringValue())
	assert.EqualValues(t, 3, st.GetFields()["payload"].GetNumberValue())

	m, err := c.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, message.EventTotalUpdate, m.Event)
	assert.EqualValues(t, 3, m.Payload)

	data, err = c.Encode(message.New(message.LegacyIncrement, nil))
	require.NoError(t, err)
	m, err = c.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, message.LegacyIncrement, m.Event)
	assert.Nil(t, m.Payload)

	_, err = c.Decode([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}
