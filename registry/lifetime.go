package registry

import (
	"sync"

	"github.com/lonng/coins/session"
)

// LifetimeHandler 会话生命周期回调
type LifetimeHandler func(*session.Session)

type lifetime struct {
	mu        sync.RWMutex
	onCreated []LifetimeHandler // callbacks that emitted on session created
	onClosed  []LifetimeHandler // callbacks that emitted on session closed
}

func (lt *lifetime) created(h LifetimeHandler) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.onCreated = append(lt.onCreated, h)
}

func (lt *lifetime) closed(h LifetimeHandler) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.onClosed = append(lt.onClosed, h)
}

func (lt *lifetime) fireCreated(s *session.Session) {
	lt.mu.RLock()
	handlers := lt.onCreated
	lt.mu.RUnlock()

	for _, h := range handlers {
		h(s)
	}
}

func (lt *lifetime) fireClosed(s *session.Session) {
	lt.mu.RLock()
	handlers := lt.onClosed
	lt.mu.RUnlock()

	for _, h := range handlers {
		h(s)
	}
}
