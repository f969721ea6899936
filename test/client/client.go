package client

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lonng/coins/internal/log"
	"github.com/lonng/coins/protocol/codec"
	"github.com/lonng/coins/protocol/message"
)

var (
	ErrClientClosed = errors.New("client is closed")
	ErrTimeout      = errors.New("wait reply timeout")
)

const backlog = 64

// Client is a tiny coins client
type Client struct {
	conn      *websocket.Conn       // low-level connection
	codec     codec.Codec           // frame codec
	die       chan struct{}         // connector close channel
	chRecv    chan *message.Message // received messages
	mu        sync.Mutex            // 保证同一时刻只有一个写操作
	closeOnce sync.Once             // close once
	closed    atomic.Bool           // is closed or not
}

// Dial 连接到 url, 例如 ws://127.0.0.1:8081/ws; c 为 nil 时使用 JSON
func Dial(url string, c codec.Codec) (*Client, error) {
	if c == nil {
		c = codec.NewJSON()
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}

	client := &Client{
		conn:   conn,
		codec:  c,
		die:    make(chan struct{}),
		chRecv: make(chan *message.Message, backlog),
	}
	go client.read()
	return client, nil
}

// Send 发送一个没有 payload 的事件
func (c *Client) Send(event string) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	data, err := c.codec.Encode(message.New(event, nil))
	if err != nil {
		return err
	}
	return c.SendRaw(data)
}

// SendRaw 发送原始帧, 帧类型由编解码器决定
func (c *Client) SendRaw(data []byte) error {
	typ := websocket.TextMessage
	if c.codec.Binary() {
		typ = websocket.BinaryMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(typ, data)
}

// Increment 点击一次
func (c *Client) Increment() error {
	return c.Send(message.EventIncrement)
}

// Query 查询总数并等待回复
func (c *Client) Query(timeout time.Duration) (int64, error) {
	if err := c.Send(message.EventQueryTotal); err != nil {
		return 0, err
	}
	msg, err := c.Recv(timeout)
	if err != nil {
		return 0, err
	}
	return Total(msg)
}

// Recv 等待下一条消息
func (c *Client) Recv(timeout time.Duration) (*message.Message, error) {
	select {
	case msg, ok := <-c.chRecv:
		if !ok {
			return nil, ErrClientClosed
		}
		return msg, nil
	case <-time.After(timeout):
		return nil, ErrTimeout
	}
}

// Close 发送关闭帧后关闭连接
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.mu.Unlock()
		close(c.die)
		err = c.conn.Close()
	})
	return err
}

// Abort 不发送关闭帧, 直接断开底层连接
func (c *Client) Abort() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.die)
		err = c.conn.UnderlyingConn().Close()
	})
	return err
}

// Closed 连接是否已关闭, 包括被服务端关闭
func (c *Client) Closed() <-chan struct{} {
	return c.die
}

func (c *Client) read() {
	defer close(c.chRecv)
	defer func() {
		c.closeOnce.Do(func() {
			c.closed.Store(true)
			close(c.die)
			_ = c.conn.Close()
		})
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := c.codec.Decode(data)
		if err != nil {
			log.Error("Decode message error.", err)
			continue
		}
		select {
		case c.chRecv <- msg:
		default:
			log.Error("Client receive buffer exceed, drop message %s", msg.String())
		}
	}
}

// Total 从 total-update 消息中取出总数, JSON 数字解码为 float64
func Total(msg *message.Message) (int64, error) {
	switch v := msg.Payload.(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, errors.New("unexpected total payload")
	}
}
