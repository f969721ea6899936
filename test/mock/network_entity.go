package mock

import (
	"errors"
	"net"
	"sync"
)

// ErrClosed 对已关闭的 mock 连接推送消息
var ErrClosed = errors.New("mock entity closed")

// NetAddr mock the net.Addr interface
type NetAddr struct{}

// Network implements the net.Addr interface
func (a NetAddr) Network() string { return "mock" }

// String implements the net.Addr interface
func (a NetAddr) String() string { return "mock-addr" }

// Pushed 记录一次推送
type Pushed struct {
	Event   string
	Payload any
}

// NetworkEntity 记录所有推送消息的网络对象, 用于构造会话
type NetworkEntity struct {
	mu     sync.Mutex
	pushed []Pushed
	closed bool
}

// NewNetworkEntity returns an mock network entity
func NewNetworkEntity() *NetworkEntity {
	return &NetworkEntity{}
}

// RemoteAddr implements the session.NetworkEntity interface
func (n *NetworkEntity) RemoteAddr() net.Addr {
	return NetAddr{}
}

// Push implements the session.NetworkEntity interface
func (n *NetworkEntity) Push(event string, v any) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrClosed
	}
	n.pushed = append(n.pushed, Pushed{Event: event, Payload: v})
	return nil
}

// Close implements the session.NetworkEntity interface
func (n *NetworkEntity) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrClosed
	}
	n.closed = true
	return nil
}

// Closed 是否已关闭
func (n *NetworkEntity) Closed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.closed
}

// Pushed 返回所有推送消息的副本
func (n *NetworkEntity) Pushed() []Pushed {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]Pushed(nil), n.pushed...)
}

// LastPush 返回最后一次推送, 没有推送时 ok 为 false
func (n *NetworkEntity) LastPush() (Pushed, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.pushed) == 0 {
		return Pushed{}, false
	}
	return n.pushed[len(n.pushed)-1], true
}
