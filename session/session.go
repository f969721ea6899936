// Copyright (c) nano Authors. All Rights Reserved.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package session

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// ErrSessionFinished 会话已经结束, 不再接受计数变更
var ErrSessionFinished = errors.New("session finished")

// Session 表示一个活跃连接在服务端的记录.
// localCount 从连接建立起就是 0, 不存在 "尚未计数" 的状态; 只有本会话的事件会修改它.
type Session struct {
	id         int64         // session global unique id, 由传输层分配
	entity     NetworkEntity // low-level network entity
	createdAt  time.Time     // 连接建立时间
	localCount atomic.Int64  // 本会话累计的点击次数
	mu         sync.Mutex    // 保证同一会话的计数变更和结束互斥
	finished   bool          // 是否已经结算, 受 mu 保护
}

// New 返回新的会话实例, id 由传输层分配, entity 是低级网络实例
func New(id int64, entity NetworkEntity) *Session {
	return &Session{
		id:        id,
		entity:    entity,
		createdAt: time.Now(),
	}
}

// ID returns the session id
func (s *Session) ID() int64 {
	return s.id
}

// NetworkEntity 返回低级网络代理对象
func (s *Session) NetworkEntity() NetworkEntity {
	return s.entity
}

// CreatedAt 返回连接建立时间
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LocalCount 返回本会话累计的点击次数
func (s *Session) LocalCount() int64 {
	return s.localCount.Load()
}

// Finished 会话是否已经结算
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.finished
}

// Incr 在会话锁内执行 apply, apply 成功后本地计数加 1.
// 会话已经结算时返回 ErrSessionFinished, apply 不会被执行.
func (s *Session) Incr(apply func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return ErrSessionFinished
	}
	if apply != nil {
		if err := apply(); err != nil {
			return err
		}
	}
	s.localCount.Add(1)
	return nil
}

// Finish 结算会话: 标记为已结束, 并在会话锁内以当前本地计数调用 settle.
// 只有第一次调用生效, 之后返回 ErrSessionFinished.
func (s *Session) Finish(settle func(localCount int64) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return ErrSessionFinished
	}
	s.finished = true
	if settle == nil {
		return nil
	}
	return settle(s.localCount.Load())
}

// Push 推送消息给客户端, 只发往当前会话
func (s *Session) Push(event string, v any) error {
	return s.entity.Push(event, v)
}

// RemoteAddr returns the remote network address.
func (s *Session) RemoteAddr() net.Addr {
	return s.entity.RemoteAddr()
}

// Close 关闭底层连接, 计数结算由断开事件触发, 不在这里处理
func (s *Session) Close() {
	_ = s.entity.Close()
}
