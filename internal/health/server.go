package health

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/helloca/ai-service/internal/logging"
)

// NewGRPCServer returns a gRPC server exposing grpc.health.v1.Health backed
// by hs.
func NewGRPCServer(hs *health.Server) *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryLogger))
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// Dial connects to the health server listening on addr.
func Dial(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(LocalTarget(addr), grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// LocalTarget rewrites a wildcard listen address into one a client can dial.
func LocalTarget(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}

func unaryLogger(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	entry := logging.GetLogger().WithFields(logrus.Fields{
		"method":   info.FullMethod,
		"code":     status.Code(err).String(),
		"duration": time.Since(start).String(),
	})
	if err != nil {
		entry.WithError(err).Warn("grpc call failed")
	} else {
		entry.Debug("grpc call")
	}
	return resp, err
}
