package pipeline

import (
	"sync"

	"github.com/lonng/coins/protocol/message"
	"github.com/lonng/coins/session"
)

type chain struct {
	mu       sync.RWMutex
	handlers []HandlerFunc
}

func (c *chain) PushFront(h HandlerFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append([]HandlerFunc{h}, c.handlers...)
}

func (c *chain) PushBack(h HandlerFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

func (c *chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handlers)
}

func (c *chain) Process(s *session.Session, msg *message.Message) error {
	// 拷贝一份, 处理函数内可以安全地修改链
	c.mu.RLock()
	handlers := c.handlers
	c.mu.RUnlock()

	for _, h := range handlers {
		if err := h(s, msg); err != nil {
			return err
		}
	}
	return nil
}
