package coins

import (
	"net/http"
	"time"

	"github.com/lonng/coins/internal/env"
	"github.com/lonng/coins/internal/log"
	"github.com/lonng/coins/node"
	"github.com/lonng/coins/pipeline"
	"github.com/lonng/coins/protocol/codec"
	"github.com/lonng/coins/session/service"
	"github.com/prometheus/client_golang/prometheus"
)

type Option func(*node.Options)

//==== 基本

// WithDebugMode 启用调试
func WithDebugMode() Option {
	return func(opt *node.Options) {
		env.Debug = true
	}
}

// WithLogger 设置日志
func WithLogger(logger log.Logger) Option {
	return func(opt *node.Options) {
		log.SetLogger(logger)
	}
}

// WithLabel 设置节点标签
func WithLabel(label string) Option {
	return func(opt *node.Options) {
		opt.Label = label
	}
}

//==== 握手

// WithCheckOrigin 设置跨域检查函数
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(opt *node.Options) {
		opt.CheckOrigin = fn
	}
}

//==== 工作

// WithCodec 设置帧编解码器
func WithCodec(c codec.Codec) Option {
	return func(opt *node.Options) {
		opt.Codec = c
	}
}

// WithPipeline 所有输入前置函数和输出前置函数
func WithPipeline(pipeline pipeline.Pipeline) Option {
	return func(opt *node.Options) {
		opt.Pipeline = pipeline
	}
}

// WithSessionIDService 设置会话 ID 生成服务
func WithSessionIDService(conns service.Connection) Option {
	return func(opt *node.Options) {
		opt.Connections = conns
	}
}

// WithNodeId 使用 snowflake 算法生成 sessionId 的时候, 使用此设置作为 workerId
func WithNodeId(nodeId int64) Option {
	return func(opt *node.Options) {
		opt.Connections = service.NewSnowflake(nodeId)
	}
}

//==== 心跳和对账

// WithHeartbeatInterval 设置 ping 间隔, 超过 2 倍间隔未收到客户端数据视为断线
func WithHeartbeatInterval(d time.Duration) Option {
	return func(opt *node.Options) {
		opt.HeartbeatInterval = d
	}
}

// WithAuditInterval 设置对账间隔, 0 表示不启用
func WithAuditInterval(d time.Duration) Option {
	return func(opt *node.Options) {
		opt.AuditInterval = d
	}
}

//==== 运维

// WithMetrics 在 reg 上注册指标
func WithMetrics(reg prometheus.Registerer) Option {
	return func(opt *node.Options) {
		opt.Registerer = reg
	}
}

// WithServiceAddr 启用 gRPC 健康检查监听
func WithServiceAddr(addr string) Option {
	return func(opt *node.Options) {
		opt.ServiceAddr = addr
	}
}
