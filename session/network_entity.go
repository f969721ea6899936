package session

import "net"

// NetworkEntity 底层网络对象, 只支持点对点推送, 没有广播接口
type NetworkEntity interface {
	RemoteAddr() net.Addr
	Push(event string, v any) error
	Close() error
}
