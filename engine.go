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


package coins

import (
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/lonng/coins/node"
	"github.com/lonng/coins/registry"
)

// VERSION returns current coins version
var VERSION = "0.1.0"

// Engine 引擎, 持有一个单机节点
type Engine struct {
	running atomic.Bool
	node    *node.Node
	opts    *node.Options
}

// New 创建引擎实例
func New(opts ...Option) *Engine {
	options := node.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &Engine{
		node: node.NewNode(options),
		opts: options,
	}
}

// ServeHTTP conforms to the http.Handler interface, 升级为 WebSocket 连接
func (engine *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !engine.running.Load() {
		http.Error(w, ErrNotRunning.Error(), http.StatusServiceUnavailable)
		return
	}
	engine.node.ServeHTTP(w, r)
}

// Registry 返回会话表, 可以注册会话生命周期回调
func (engine *Engine) Registry() *registry.Registry {
	return engine.node.Registry()
}

// Node 返回节点
func (engine *Engine) Node() *node.Node {
	return engine.node
}

// Startup 启动引擎
func (engine *Engine) Startup() error {
	if !engine.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	return engine.node.Startup()
}

// Shutdown 关闭引擎, 断开所有会话
func (engine *Engine) Shutdown() {
	if !engine.running.CompareAndSwap(true, false) {
		return
	}
	engine.node.Shutdown()
}

// RunWs 启动 WebSocket 服务
func (engine *Engine) RunWs(addr string, path string) error {
	if err := engine.Startup(); err != nil {
		return err
	}
	return engine.node.ListenAndServeWs(addr, path)
}

// Run 使用自定义的 handler 启动 http 服务, handler 中应该包含引擎本身
func (engine *Engine) Run(addr string, handler http.Handler) error {
	if err := engine.Startup(); err != nil {
		return err
	}
	return engine.node.ListenAndServe(addr, handler)
}

// Wait 等待退出信号
func (engine *Engine) Wait() {
	sg := make(chan os.Signal, 1)
	signal.Notify(sg, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	<-sg
	engine.Shutdown()
}
