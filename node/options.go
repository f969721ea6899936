package node

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lonng/coins/internal/env"
	"github.com/lonng/coins/pipeline"
	"github.com/lonng/coins/protocol/codec"
	"github.com/lonng/coins/session/service"
	"github.com/prometheus/client_golang/prometheus"
)

// Options 节点选项
type Options struct {
	//握手
	CheckOrigin func(*http.Request) bool //跨域检测, WebSocket 升级阶段

	//工作
	Codec       codec.Codec        //帧编解码器, 默认 JSON
	Pipeline    pipeline.Pipeline  //所有输入前置函数和输出前置函数
	Connections service.Connection //会话 ID 生成服务

	//心跳和对账
	HeartbeatInterval time.Duration //心跳间隔, 0 表示不发送 ping
	AuditInterval     time.Duration //对账间隔, 0 表示不启用

	//运维
	Registerer  prometheus.Registerer //指标注册器, nil 表示不收集指标
	ServiceAddr string                //gRPC 健康检查监听地址, 一般是 IP:Port; 空表示不启用
	Label       string                //节点标签, 用于日志和健康检查
}

// DefaultOptions 默认选项
func DefaultOptions() *Options {
	return &Options{
		CheckOrigin:       func(_ *http.Request) bool { return true },
		Codec:             codec.NewJSON(),
		Connections:       service.Connections,
		HeartbeatInterval: env.HeartbeatInterval,
		AuditInterval:     env.AuditInterval,
		Label:             "coins-" + uuid.NewString(),
	}
}
