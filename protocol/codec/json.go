package codec

import (
	"github.com/goccy/go-json"

	"github.com/lonng/coins/protocol/message"
)

// jsonFrame JSON 帧格式: {"event":"total-update","payload":3}
type jsonFrame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type jsonCodec struct{}

// NewJSON 返回 JSON 编解码器, 使用文本帧
func NewJSON() Codec {
	return jsonCodec{}
}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Binary() bool { return false }

func (jsonCodec) Encode(m *message.Message) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	frame := jsonFrame{Event: m.Event}
	if m.Payload != nil {
		payload, err := json.Marshal(m.Payload)
		if err != nil {
			return nil, err
		}
		frame.Payload = payload
	}
	return json.Marshal(frame)
}

func (jsonCodec) Decode(data []byte) (*message.Message, error) {
	var frame jsonFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, err
	}
	m := &message.Message{Event: frame.Event}
	if len(frame.Payload) > 0 && string(frame.Payload) != "null" {
		if err := json.Unmarshal(frame.Payload, &m.Payload); err != nil {
			return nil, err
		}
	}
	return m, m.Validate()
}
