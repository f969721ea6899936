package node

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	rpc "google.golang.org/grpc/health/grpc_health_v1"
)

type checkFn func(ctx context.Context) (*rpc.HealthCheckResponse, error)

// newHealthServer gRPC health check server
// (https://godoc.org/google.golang.org/grpc/health/grpc_health_v1)
func newHealthServer(addr string) (net.Addr, func(stop <-chan struct{}, check checkFn) error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	return ln.Addr(), func(stop <-chan struct{}, check checkFn) error {
		s := grpc.NewServer(grpc.ConnectionTimeout(time.Second * 3))
		rpc.RegisterHealthServer(s, &healthServer{check: check})
		go func() {
			<-stop
			s.Stop()
		}()
		return s.Serve(ln)
	}, nil
}

type healthServer struct {
	rpc.UnimplementedHealthServer
	check checkFn
}

func (s *healthServer) Check(ctx context.Context, _ *rpc.HealthCheckRequest) (*rpc.HealthCheckResponse, error) {
	return s.check(ctx)
}

// check 节点关闭后报告 NOT_SERVING
func (n *Node) check(context.Context) (*rpc.HealthCheckResponse, error) {
	status := rpc.HealthCheckResponse_SERVING
	if n.shuttingDown() {
		status = rpc.HealthCheckResponse_NOT_SERVING
	}
	return &rpc.HealthCheckResponse{Status: status}, nil
}
