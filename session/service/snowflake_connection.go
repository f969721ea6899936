package service

import (
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/lonng/coins/internal/log"
)

// snowflakeConnection 基于雪花算法的连接服务
type snowflakeConnection struct {
	node *snowflake.Node
}

// SessionID 返回新的会话ID
func (c *snowflakeConnection) SessionID() int64 {
	return c.node.Generate().Int64()
}

// newSnowflakeConnection 构造函数, nodeId 超出范围时取模
func newSnowflakeConnection(nodeId int64) *snowflakeConnection {
	maxNodeId := int64(-1) ^ (int64(-1) << snowflake.NodeBits)
	if nodeId < 0 || nodeId > maxNodeId {
		nodeId = (nodeId%(maxNodeId+1) + maxNodeId + 1) % (maxNodeId + 1)
	}
	node, err := snowflake.NewNode(nodeId)
	if err != nil {
		log.Fatal("Create snowflake node error, NodeId=%d.", nodeId, err)
	}
	return &snowflakeConnection{node: node}
}

// defaultNodeId 默认使用进程号作为 nodeId
func defaultNodeId() int64 {
	return int64(os.Getpid())
}
