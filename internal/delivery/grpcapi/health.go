package grpcapi

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name probes pass to grpc.health.v1.Health/Check.
const ServiceName = "umpay.PaymentGateway"

// PingFunc reports whether the order store is reachable.
type PingFunc func(ctx context.Context) error

type HealthServer struct {
	health *health.Server
	ping   PingFunc
	logger *zap.Logger
}

func NewHealthServer(ping PingFunc, logger *zap.Logger) *HealthServer {
	h := &HealthServer{
		health: health.NewServer(),
		ping:   ping,
		logger: logger,
	}
	h.setStatus(healthpb.HealthCheckResponse_SERVING)
	return h
}

func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

// Probe pings the store once and publishes the result.
func (h *HealthServer) Probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			h.logger.Warn("store ping failed", zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.setStatus(status)
}

// Run probes on every tick until ctx is done.
func (h *HealthServer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

// Shutdown flips every service to NOT_SERVING so balancers drain before the listener closes.
func (h *HealthServer) Shutdown() {
	h.health.Shutdown()
}

func (h *HealthServer) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}
