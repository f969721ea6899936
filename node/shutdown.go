package node

import (
	"context"
	"net/http"

	"github.com/lonng/coins/internal/log"
	"github.com/lonng/coins/session"
)

// Shutdown 关闭节点: 停止接入, 断开所有会话并等待结算完成, 最后做一次对账
func (n *Node) Shutdown() {
	if !n.inShutdown.CompareAndSwap(false, true) {
		return
	}
	log.Info("==========【Coins is shutting down...】==========")

	// 停止 HTTP 监听, 已升级的 WebSocket 连接不受影响
	_ = n.closeHttpServersLocked()

	// 关闭信号, 写协程强制退出并关闭底层连接, 读协程随之退出并结算会话
	close(n.die)
	n.registry.Range(func(s *session.Session) bool {
		s.Close()
		return true
	})

	// 等待进行中的 trackConn 完成, 之后不会再有新的连接
	n.connsMu.Lock()
	n.connsMu.Unlock() //nolint:staticcheck
	n.connGroup.Wait()
	n.wg.Wait()
	n.httpServerGroup.Wait()

	if err := n.registry.Audit(); err != nil {
		log.Error("Final audit failed, Label=%s", n.opts.Label, err)
	}
	log.Info("==========【Coins already shutdown, Total=%d】==========", n.registry.Total())
}

// shuttingDown 检查当前节点是否正在关闭
func (n *Node) shuttingDown() bool {
	return n.inShutdown.Load()
}

// trackConn 记录正在处理的连接, 关闭时等待所有连接退出
func (n *Node) trackConn(add bool) bool {
	n.connsMu.Lock()
	defer n.connsMu.Unlock()

	if add {
		if n.shuttingDown() {
			return false
		}
		n.connGroup.Add(1)
	} else {
		n.connGroup.Done()
	}
	return true
}

// trackHttpServer 记录当前节点的 HTTP 服务器, 用于在关闭时关闭所有 HTTP 服务器
func (n *Node) trackHttpServer(server *http.Server, add bool) bool {
	n.httpServersMu.Lock()
	defer n.httpServersMu.Unlock()

	if n.httpServers == nil {
		n.httpServers = make(map[*http.Server]struct{})
	}
	if add {
		if n.shuttingDown() {
			return false
		}
		n.httpServers[server] = struct{}{}
		n.httpServerGroup.Add(1)
	} else {
		delete(n.httpServers, server)
		n.httpServerGroup.Done()
	}
	return true
}

// closeHttpServersLocked 关闭所有 HTTP 服务器
func (n *Node) closeHttpServersLocked() error {
	n.httpServersMu.Lock()
	defer n.httpServersMu.Unlock()

	var err error
	for server := range n.httpServers {
		if cerr := server.Shutdown(context.Background()); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
