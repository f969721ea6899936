package registry

import (
	"github.com/lonng/coins/protocol/message"
	"github.com/pingcap/errors"
)

// Handle 按事件名分发会话信号, 兼容旧版客户端的事件名.
// 旧版客户端的查询使用旧版的回复事件名.
func (r *Registry) Handle(sid int64, msg *message.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	event, legacy := message.Canonical(msg.Event)
	switch event {
	case message.EventIncrement:
		return r.Increment(sid)
	case message.EventQueryTotal:
		_, err := r.query(sid, event, message.ReplyEvent(message.EventTotalUpdate, legacy))
		return err
	default:
		r.metrics.ProtocolViolation(signalUnknown)
		return errors.Annotatef(ErrUnknownEvent, "session %d, event=%q", sid, msg.Event)
	}
}
