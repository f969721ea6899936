package node

import "time"

// audit 定时对账, 节点关闭时退出; 不一致由 Registry 记录, 不做修正
func (n *Node) audit(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = n.registry.Audit()
		case <-n.die:
			return
		}
	}
}
