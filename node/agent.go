package node

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lonng/coins/internal/env"
	"github.com/lonng/coins/internal/log"
	"github.com/lonng/coins/pipeline"
	"github.com/lonng/coins/protocol/codec"
	"github.com/lonng/coins/protocol/message"
	"github.com/lonng/coins/session"
)

const (
	agentWriteBacklog = 16
	maxMessageSize    = 4096
)

const (
	statusWorking int32 = iota
	statusClosed
)

var _ session.NetworkEntity = (*agent)(nil)

// agent 与客户端直接通信的网络对象, 每个 WebSocket 连接一个
type agent struct {
	session       *session.Session      // session
	conn          *websocket.Conn       // low-level conn
	codec         codec.Codec           // frame codec
	pipeline      pipeline.Pipeline     //
	heartbeat     time.Duration         // ping 间隔
	chDie         chan struct{}         // wait for close
	chSend        chan *message.Message // push message queue
	chQuit        <-chan struct{}       // 节点关闭信号
	lastAt        atomic.Int64          // last heartbeat unix time stamp
	writeReady    atomic.Bool           // write 协程是否已经启动
	connCloseOnce sync.Once             // 确保 conn 只关闭一次
	chanCloseOnce sync.Once             // 确保 chDie 和 chSend 只关闭一次
	state         atomic.Int32          // current agent state
}

// newAgent 构造函数, 同时创建绑定的会话
func newAgent(sid int64, conn *websocket.Conn, opts *Options, chQuit <-chan struct{}) *agent {
	a := &agent{
		conn:      conn,
		codec:     opts.Codec,
		pipeline:  opts.Pipeline,
		heartbeat: opts.HeartbeatInterval,
		chDie:     make(chan struct{}),
		chSend:    make(chan *message.Message, agentWriteBacklog),
		chQuit:    chQuit,
	}
	a.lastAt.Store(time.Now().Unix())
	a.state.Store(statusWorking)

	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		a.lastAt.Store(time.Now().Unix())
		return nil
	})

	a.session = session.New(sid, a)
	return a
}

// RemoteAddr 客户端地址, 一般是上游负载均衡的地址
func (a *agent) RemoteAddr() net.Addr {
	return a.conn.RemoteAddr()
}

// Push 推送数据给客户端, 消息在写协程中编码
func (a *agent) Push(event string, v any) error {
	if a.status() == statusClosed {
		return ErrBrokenPipe
	}

	if len(a.chSend) >= agentWriteBacklog {
		return ErrBufferExceed
	}

	if env.Debug {
		log.Info("Type=Push, ID=%d, Event=%s, Data=%v", a.session.ID(), event, v)
	}

	return a.send(message.New(event, v))
}

// Close 设置关闭状态, 发送关闭信号; 如果 write 协程未就绪, 直接关闭底层连接; 否则由 write 协程 flush 完数据后关闭
func (a *agent) Close() error {
	if !a.state.CompareAndSwap(statusWorking, statusClosed) {
		return ErrCloseClosedSession
	}

	if env.Debug {
		log.Info("Session closing, ID=%d, IP=%s", a.session.ID(), a.conn.RemoteAddr())
	}

	// 关闭 chan, 发出停止信号
	a.closeChanOnce()

	// 如果 write 协程已经启动, 则不需要关闭底层连接, 因为 write 协程 flush 完会自动处理
	if a.writeReady.Load() {
		return nil
	}
	return a.closeConnOnce()
}

// String 返回描述信息
func (a *agent) String() string {
	return fmt.Sprintf("Remote=%s, LastTime=%d", a.conn.RemoteAddr().String(), a.lastAt.Load())
}

// touch 收到任意数据都视为心跳
func (a *agent) touch() {
	a.lastAt.Store(time.Now().Unix())
}

// closeChanOnce 确保 chan 只关闭一次
func (a *agent) closeChanOnce() {
	a.chanCloseOnce.Do(func() {
		close(a.chDie)
		close(a.chSend)
	})
}

// closeConnOnce 确保 conn 只关闭一次
func (a *agent) closeConnOnce() error {
	var err error
	a.connCloseOnce.Do(func() {
		err = a.conn.Close()
	})
	return err
}

// status 获取当前状态
func (a *agent) status() int32 {
	return a.state.Load()
}

// write 连接的 write 协程的任务
func (a *agent) write() {
	var chTick <-chan time.Time
	if a.heartbeat > 0 {
		ticker := time.NewTicker(a.heartbeat)
		defer ticker.Stop()
		chTick = ticker.C
	}
	forceQuit := false

	// clean func
	defer func() {
		// 关闭 chan, 必须关闭 chan 后才能执行 flush, 否则阻塞
		a.closeChanOnce()
		// 非强制退出, 则将所有待发送的消息写入底层连接, 并发送关闭帧
		if !forceQuit {
			a.flush()
		}
		// 更改 agent 状态, 必须先更改状态再关闭底层连接
		_ = a.Close()
		// 关闭底层连接, 此时读协程将返回错误, 因上一步已经把状态关闭, 所以读协程会跳过日志退出
		_ = a.closeConnOnce()
		if env.Debug {
			log.Info("Session write goroutine exit, SessionID=%d", a.session.ID())
		}
	}()

	// 标记 write 协程已经就绪
	a.writeReady.Store(true)

	for {
		select {
		// 心跳检测
		case <-chTick:
			deadline := time.Now().Add(-2 * a.heartbeat).Unix()
			lastAt := a.lastAt.Load()
			if lastAt < deadline {
				log.Info("Session heartbeat timeout, ID=%d, LastTime=%d, Deadline=%d", a.session.ID(), lastAt, deadline)
				forceQuit = true
				return
			}
			if err := a.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(env.WriteTimeout)); err != nil {
				log.Info("Write ping error, ID=%d", a.session.ID(), err)
				forceQuit = true
				return
			}

		// 发送任务
		case msg, ok := <-a.chSend:
			if !ok {
				return
			}
			if err := a.writeMsg(msg); err != nil {
				forceQuit = true
				return
			}

		// 会话关闭
		case <-a.chDie:
			return

		// 节点关闭
		case <-a.chQuit:
			forceQuit = true
			return
		}
	}
}

// send 将消息放入待发送队列
func (a *agent) send(m *message.Message) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = ErrBrokenPipe
		}
	}()
	a.chSend <- m
	return
}

// pack 执行出站管道并编码
func (a *agent) pack(m *message.Message) []byte {
	if pipe := a.pipeline; pipe != nil {
		if err := pipe.Outbound().Process(a.session, m); err != nil {
			log.Error("Broken pipeline, ID=%d", a.session.ID(), err)
			return nil
		}
	}

	data, err := a.codec.Encode(m)
	if err != nil {
		log.Error("Encode message %s error.", m.Event, err)
		return nil
	}
	return data
}

// writeMsg 编码并写入底层连接, 编码失败的消息被丢弃
func (a *agent) writeMsg(m *message.Message) error {
	data := a.pack(m)
	if len(data) == 0 {
		return nil
	}

	typ := websocket.TextMessage
	if a.codec.Binary() {
		typ = websocket.BinaryMessage
	}

	_ = a.conn.SetWriteDeadline(time.Now().Add(env.WriteTimeout))
	if err := a.conn.WriteMessage(typ, data); err != nil {
		log.Error("Write data to low-level conn error, ID=%d", a.session.ID(), err)
		return err
	}
	return nil
}

// flush 关闭连接之前, 将所有待发送的消息写入底层连接, 最后发送关闭帧
func (a *agent) flush() {
	for msg := range a.chSend {
		if err := a.writeMsg(msg); err != nil {
			return // 底层连接断开, 退出写入
		}
	}
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = a.conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(env.WriteTimeout))
}
