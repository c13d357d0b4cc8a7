package replicator

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthChecker probes peer liveness over gRPC health checking, independent
// of the sync Transport. A peer failing its health check is not removed
// from the cluster automatically — callers decide whether to LeaveCluster.
type HealthChecker struct {
	logger *zap.Logger
}

// NewHealthChecker constructs a HealthChecker.
func NewHealthChecker(logger *zap.Logger) *HealthChecker {
	return &HealthChecker{logger: logger}
}

// Check dials addr and asks for its serving status. A dial or RPC failure
// is reported as not serving, never as an error the caller must unwrap.
func (h *HealthChecker) Check(ctx context.Context, addr string) bool {
	dialCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		h.logger.Debug("health dial failed", zap.String("addr", addr), zap.Error(err))
		return false
	}
	defer conn.Close()

	client := grpc_health_v1.NewHealthClient(conn)
	resp, err := client.Check(dialCtx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		h.logger.Debug("health check failed", zap.String("addr", addr), zap.Error(err))
		return false
	}
	return resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING
}
