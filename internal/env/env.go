package env

import (
	"time"
)

//goland:noinspection GoVarAndConstTypeMayBeOmitted,GoCommentStart
var (
	Debug             bool          = false            //调试模式
	HeartbeatInterval time.Duration = 30 * time.Second //默认心跳间隔, 超过 2 倍间隔未收到 pong 视为断线
	AuditInterval     time.Duration = 10 * time.Second //默认对账间隔, 0 表示不启用
	WriteTimeout      time.Duration = 10 * time.Second //单次写入底层连接的超时时间
)
