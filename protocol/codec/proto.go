package codec

import (
	"github.com/lonng/coins/protocol/message"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	fieldEvent   = "event"
	fieldPayload = "payload"
)

type protoCodec struct{}

// NewProto 返回 protobuf 编解码器, 帧内容是 google.protobuf.Struct, 使用二进制帧
func NewProto() Codec {
	return protoCodec{}
}

func (protoCodec) Name() string { return "proto" }

func (protoCodec) Binary() bool { return true }

func (protoCodec) Encode(m *message.Message) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	fields := map[string]any{fieldEvent: m.Event}
	if m.Payload != nil {
		fields[fieldPayload] = m.Payload
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

func (protoCodec) Decode(data []byte) (*message.Message, error) {
	st := &structpb.Struct{}
	if err := proto.Unmarshal(data, st); err != nil {
		return nil, err
	}
	m := &message.Message{Event: st.GetFields()[fieldEvent].GetStringValue()}
	if v, ok := st.GetFields()[fieldPayload]; ok {
		m.Payload = v.AsInterface()
	}
	return m, m.Validate()
}
