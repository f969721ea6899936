// Copyright (c) nano Authors. All Rights Reserved.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.


package node

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/lonng/coins/internal/log"
	"github.com/lonng/coins/metrics"
	"github.com/lonng/coins/registry"
	"github.com/lonng/coins/session/service"
)

// Node 单机节点, 负责 WebSocket 接入, 会话注册, 心跳, 对账和健康检查.
// 所有连接共享同一个 Registry, 每个连接一个读协程和一个写协程.
type Node struct {
	opts     *Options
	upgrader *websocket.Upgrader
	registry *registry.Registry
	metrics  *metrics.Metrics
	conns    service.Connection

	started    atomic.Bool
	inShutdown atomic.Bool
	die        chan struct{} //节点关闭信号
	healthAddr string        //健康检查实际监听地址
	wg         sync.WaitGroup

	httpServersMu   sync.Mutex
	httpServers     map[*http.Server]struct{}
	httpServerGroup sync.WaitGroup

	connsMu   sync.Mutex
	connGroup sync.WaitGroup
}

// NewNode 创建新的节点, opts 为 nil 时使用默认选项
func NewNode(opts *Options) *Node {
	if opts == nil {
		opts = DefaultOptions()
	}
	defaults := DefaultOptions()
	if opts.Codec == nil {
		opts.Codec = defaults.Codec
	}
	if opts.Connections == nil {
		opts.Connections = defaults.Connections
	}
	if opts.CheckOrigin == nil {
		opts.CheckOrigin = defaults.CheckOrigin
	}
	if opts.Label == "" {
		opts.Label = defaults.Label
	}

	return &Node{
		opts: opts,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		registry: registry.New(nil),
		conns:    opts.Connections,
		die:      make(chan struct{}),
	}
}

// Options 返回节点选项
func (n *Node) Options() *Options {
	return n.opts
}

// Registry 返回节点的会话表
func (n *Node) Registry() *registry.Registry {
	return n.registry
}

// Label 返回节点标签
func (n *Node) Label() string {
	return n.opts.Label
}

// HealthAddr 返回健康检查的实际监听地址, 未启用时返回空
func (n *Node) HealthAddr() string {
	return n.healthAddr
}

// Startup 启动节点: 注册指标, 启动健康检查和对账协程
func (n *Node) Startup() error {
	if !n.started.CompareAndSwap(false, true) {
		return ErrNodeStarted
	}

	if n.opts.Registerer != nil {
		n.metrics = metrics.MustNewMetrics(n.opts.Registerer, n.registry)
		n.registry.SetMetrics(n.metrics)
	}

	if n.opts.ServiceAddr != "" {
		addr, run, err := newHealthServer(n.opts.ServiceAddr)
		if err != nil {
			return err
		}
		n.healthAddr = addr.String()
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			if err := run(n.die, n.check); err != nil && !n.shuttingDown() {
				log.Error("Health server stopped unexpectedly.", err)
			}
		}()
		log.Info("Health service listening on %s", n.healthAddr)
	}

	if interval := n.opts.AuditInterval; interval > 0 {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			n.audit(interval)
		}()
	}

	log.Info("Node %s started, codec=%s", n.opts.Label, n.opts.Codec.Name())
	return nil
}

// ServeHTTP 处理 HTTP 请求, 升级为 WebSocket 连接, 连接关闭前不会返回
func (n *Node) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !n.trackConn(true) {
		http.Error(w, ErrServerClosed.Error(), http.StatusServiceUnavailable)
		return
	}
	defer n.trackConn(false)

	conn, err := n.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Info("Upgrade failure, URI=%s", r.RequestURI, err)
		return
	}
	n.handleWS(conn)
}
