package node

import (
	"net"
	"net/http"

	"github.com/lonng/coins/internal/log"
)

// ListenAndServeWs 启动 http/ws 监听, path 上的请求升级为 WebSocket 连接
func (n *Node) ListenAndServeWs(addr string, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, n)
	return n.ListenAndServe(addr, mux)
}

// ListenAndServe 使用自定义的 handler 启动 http 监听, 节点关闭时一并关闭
func (n *Node) ListenAndServe(addr string, handler http.Handler) error {
	server := &http.Server{Addr: addr, Handler: handler}

	log.Info("==========【Coins is starting %v】==========", addr)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Info("==========【Coins failed to start, %v】==========", err)
		return err
	}
	//goland:noinspection GoUnhandledErrorResult
	defer ln.Close()

	// 跟踪 http server
	if !n.trackHttpServer(server, true) {
		return ErrServerClosed
	}
	defer n.trackHttpServer(server, false)

	log.Info("==========【Coins already started :%v】==========", ln.Addr().(*net.TCPAddr).Port)
	err = server.Serve(ln)
	if err == http.ErrServerClosed {
		return ErrServerClosed
	}
	return err
}
