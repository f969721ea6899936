package service

// Connections 默认连接服务
var Connections Connection = newSnowflakeConnection(defaultNodeId())

// Connection 连接服务接口
type Connection interface {
	// SessionID 返回新的会话ID
	SessionID() int64
}

// ResetNodeId 使用指定的 nodeId 重建默认的雪花算法连接服务
func ResetNodeId(nodeId int64) {
	Connections = newSnowflakeConnection(nodeId)
}

// NewCounter 返回基于自增计数器的连接服务, 适合测试和单机场景
func NewCounter() Connection {
	return newCounterConnection()
}

// NewSnowflake 返回基于雪花算法的连接服务
func NewSnowflake(nodeId int64) Connection {
	return newSnowflakeConnection(nodeId)
}
