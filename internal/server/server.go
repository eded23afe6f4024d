package server

import (
	"context"
	"net"
	"time"

	"github.com/shimmeringbee/logwrap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// GRPCServer wraps a gRPC server and listener.
type GRPCServer struct {
	Server   *grpc.Server
	Listener net.Listener
}

// NewGRPCServer listens on addr and builds a server with reflection and call logging.
func NewGRPCServer(addr string, logger logwrap.Logger) (*GRPCServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(LoggingInterceptor(logger)))
	reflection.Register(s)

	return &GRPCServer{Server: s, Listener: ln}, nil
}

func (s *GRPCServer) Serve() error {
	return s.Server.Serve(s.Listener)
}

// LoggingInterceptor logs every unary call with its status code; failures at warn.
func LoggingInterceptor(logger logwrap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		method := logwrap.Datum("method", info.FullMethod)
		code := logwrap.Datum("code", status.Code(err).String())
		duration := logwrap.Datum("duration", time.Since(start).String())
		if err != nil {
			logger.LogWarn(ctx, "gRPC call failed.", method, code, duration, logwrap.Err(err))
		} else {
			logger.LogDebug(ctx, "gRPC call served.", method, code, duration)
		}
		return resp, err
	}
}
