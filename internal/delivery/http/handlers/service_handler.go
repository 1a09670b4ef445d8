package handlers

import (
	"net/http"

	"github.com/LavaJover/shvark-tron-gateway/internal/clock"
	paymentResponse "github.com/LavaJover/shvark-tron-gateway/internal/delivery/http/dto/payment/response"
	"go.uber.org/zap"
)

const (
	ServiceName    = "UMPAY Payment Gateway"
	ServiceVersion = "1.0.0"
)

type ServiceHandler struct {
	clock  clock.Clock
	logger *zap.Logger
}

func NewServiceHandler(clk clock.Clock, logger *zap.Logger) *ServiceHandler {
	return &ServiceHandler{clock: clk, logger: logger}
}

func (h *ServiceHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, paymentResponse.IndexResponse{
		Service: ServiceName,
		Version: ServiceVersion,
		Status:  "running",
		Endpoints: map[string]string{
			"health":       "/health",
			"metrics":      "/metrics",
			"create_order": "/api/create_order",
			"query_order":  "/api/query_order",
			"webhook":      "/api/webhook",
		},
	})
}

func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, paymentResponse.HealthResponse{
		Status:    "healthy",
		Timestamp: formatTime(h.clock.Now()),
		Version:   ServiceVersion,
	})
}
