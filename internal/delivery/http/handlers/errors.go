package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	paymentResponse "github.com/LavaJover/shvark-tron-gateway/internal/delivery/http/dto/payment/response"
	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
	"go.uber.org/zap"
)

// statusFor maps a usecase error to the HTTP status returned to the merchant.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingField),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrUnsupportedCurrency),
		errors.Is(err, domain.ErrDuplicateOrder):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		message = "internal server error"
	}
	writeJSON(w, logger, status, paymentResponse.ErrorResponse{
		Success: false,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to write json response", zap.Error(err))
	}
}
