package node

import (
	"github.com/gorilla/websocket"
	"github.com/lonng/coins/internal/env"
	"github.com/lonng/coins/internal/log"
	"github.com/lonng/coins/registry"
)

// handleWS 读协程: 注册会话, 循环读取消息并按接收顺序处理, 退出时结算会话
func (n *Node) handleWS(conn *websocket.Conn) {
	agt := newAgent(n.conns.SessionID(), conn, n.opts, n.die)
	s := agt.session

	if err := n.registry.Connect(s); err != nil {
		log.Error("Register session failed, ID=%d", s.ID(), err)
		_ = agt.Close()
		return
	}

	// startup write goroutine
	go agt.write()

	if env.Debug {
		log.Info("New session established, ID=%d, %s", s.ID(), agt.String())
	}

	// guarantee agent related resource be destroyed
	defer func() {
		if err := n.registry.Disconnect(s.ID()); err != nil {
			log.Error("Settle session failed, ID=%d", s.ID(), err)
		}
		_ = agt.Close()
		if env.Debug {
			log.Info("Session read goroutine exit, ID=%d", s.ID())
		}
	}()

	// read loop
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if agt.status() == statusClosed {
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				if env.Debug {
					log.Info("Session closed by peer, ID=%d", s.ID())
				}
				return
			}
			log.Info("Read message error, session will be closed immediately, ID=%d", s.ID(), err)
			return
		}

		agt.touch()
		n.processMessage(agt, data)
	}
}

// processMessage 解码一帧数据, 执行入站管道并分发; 任何错误只丢弃当前消息, 不关闭连接
func (n *Node) processMessage(agt *agent, data []byte) {
	s := agt.session

	msg, err := agt.codec.Decode(data)
	if err != nil {
		log.Info("Decode message error, ID=%d, Size=%d", s.ID(), len(data), err)
		return
	}

	// 执行管道任务
	if pipe := n.opts.Pipeline; pipe != nil {
		if err := pipe.Inbound().Process(s, msg); err != nil {
			log.Error("Pipeline process failed, ID=%d", s.ID(), err)
			return
		}
	}

	if env.Debug {
		log.Info("ID=%d, Message={%s}", s.ID(), msg.String())
	}

	if err := n.registry.Handle(s.ID(), msg); err != nil {
		if registry.IsProtocolViolation(err) {
			log.Info("Reject message, ID=%d, Message={%s}", s.ID(), msg.String(), err)
			return
		}
		log.Error("Handle message failed, ID=%d, Message={%s}", s.ID(), msg.String(), err)
	}
}
