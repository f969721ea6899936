package message

// 标准事件名
const (
	EventIncrement   = "increment"    // 点击一次, 无 payload
	EventQueryTotal  = "query-total"  // 查询全局总数, 无 payload
	EventTotalUpdate = "total-update" // 服务端回复, payload 为总数
)

// 旧版客户端使用的事件名
const (
	LegacyIncrement   = "I clicked a coin"
	LegacyQueryTotal  = "How many coins"
	LegacyTotalUpdate = "Update coins"
)

var legacyEvents = map[string]string{
	LegacyIncrement:   EventIncrement,
	LegacyQueryTotal:  EventQueryTotal,
	LegacyTotalUpdate: EventTotalUpdate,
}

var replyEvents = map[string]string{
	EventTotalUpdate: LegacyTotalUpdate,
}

// Canonical 把旧版事件名转换为标准事件名, legacy 表示是否发生了转换
func Canonical(event string) (name string, legacy bool) {
	if name, ok := legacyEvents[event]; ok {
		return name, true
	}
	return event, false
}

// ReplyEvent 返回回复事件名, 旧版客户端使用旧版事件名
func ReplyEvent(event string, legacy bool) string {
	if !legacy {
		return event
	}
	if name, ok := replyEvents[event]; ok {
		return name
	}
	return event
}
