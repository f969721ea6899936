package pipeline

import (
	"github.com/lonng/coins/protocol/message"
	"github.com/lonng/coins/session"
)

// HandlerFunc 处理一条消息, 返回错误时中断后续处理, 消息被丢弃
type HandlerFunc func(s *session.Session, msg *message.Message) error

// Pipeline 消息处理管道, 入站消息在分发前经过 Inbound, 出站消息在编码前经过 Outbound
type Pipeline interface {
	Inbound() Chain
	Outbound() Chain
}

// Chain 按顺序执行的处理函数链
type Chain interface {
	// PushFront 添加到链首
	PushFront(h HandlerFunc)

	// PushBack 添加到链尾
	PushBack(h HandlerFunc)

	// Len 处理函数数量
	Len() int

	// Process 依次执行处理函数, 遇到第一个错误即返回
	Process(s *session.Session, msg *message.Message) error
}

type pipeline struct {
	inbound  *chain
	outbound *chain
}

// New 创建空管道
func New() Pipeline {
	return &pipeline{inbound: &chain{}, outbound: &chain{}}
}

func (p *pipeline) Inbound() Chain { return p.inbound }

func (p *pipeline) Outbound() Chain { return p.outbound }
