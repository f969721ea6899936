package message

import (
	"errors"
	"fmt"
)

// ErrEmptyEvent 消息缺少事件名
var ErrEmptyEvent = errors.New("message event is empty")

// Message 一条双向消息, 客户端到服务端的 increment/query-total 没有 payload
type Message struct {
	Event   string // event name
	Payload any    // payload, nil while absent
}

// New returns a new message instance
func New(event string, payload any) *Message {
	return &Message{Event: event, Payload: payload}
}

// Validate 检查消息是否合法
func (m *Message) Validate() error {
	if m == nil || m.Event == "" {
		return ErrEmptyEvent
	}
	return nil
}

// String, implementation of fmt.Stringer interface
func (m *Message) String() string {
	if m.Payload == nil {
		return m.Event
	}
	return fmt.Sprintf("%s(%v)", m.Event, m.Payload)
}
