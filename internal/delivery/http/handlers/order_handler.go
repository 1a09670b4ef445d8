package handlers

import (
	"net/http"
	"time"

	paymentRequest "github.com/LavaJover/shvark-tron-gateway/internal/delivery/http/dto/payment/request"
	paymentResponse "github.com/LavaJover/shvark-tron-gateway/internal/delivery/http/dto/payment/response"
	"github.com/LavaJover/shvark-tron-gateway/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-tron-gateway/internal/usecase"
	orderdto "github.com/LavaJover/shvark-tron-gateway/internal/usecase/dto/order"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type OrderHandler struct {
	uc     usecase.OrderUsecase
	logger *zap.Logger
}

func NewOrderHandler(uc usecase.OrderUsecase, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, logger: logger}
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger(r)

	fields, err := paymentRequest.DecodeFields(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, logger, err)
		return
	}
	req, err := paymentRequest.NewCreateOrderRequest(fields)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	out, err := h.uc.CreateOrder(r.Context(), &orderdto.CreateOrderInput{
		MerchantID:  req.MerchantID,
		OrderID:     req.OrderID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Signature:   req.Signature,
		CallbackURL: req.CallbackURL,
		ReturnURL:   req.ReturnURL,
		Params:      req.Params,
	})
	if err != nil {
		logger.Warn("create order rejected", zap.String("order_id", req.OrderID), zap.Error(err))
		writeError(w, logger, err)
		return
	}

	writeJSON(w, logger, http.StatusOK, paymentResponse.CreateOrderResponse{
		Success:        true,
		PaymentID:      out.PaymentID,
		PaymentAddress: out.PaymentAddress,
		Amount:         out.Amount,
		Currency:       out.Currency,
		QRCode:         out.QRCode,
		ExpiresAt:      formatTime(out.ExpiresAt),
	})
}

func (h *OrderHandler) QueryOrder(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger(r)

	fields, err := paymentRequest.DecodeFields(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, logger, err)
		return
	}
	req, err := paymentRequest.NewQueryOrderRequest(fields)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	out, err := h.uc.QueryOrder(r.Context(), &orderdto.QueryOrderInput{
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Params:    req.Params,
	})
	if err != nil {
		writeError(w, logger, err)
		return
	}

	resp := paymentResponse.QueryOrderResponse{
		Success:   true,
		Status:    out.Status,
		Amount:    out.Amount,
		Currency:  out.Currency,
		CreatedAt: formatTime(out.CreatedAt),
		ExpiresAt: formatTime(out.ExpiresAt),
	}
	if out.TransactionHash != "" {
		txHash := out.TransactionHash
		resp.TransactionHash = &txHash
	}
	if out.ConfirmedAt != nil {
		confirmedAt := formatTime(*out.ConfirmedAt)
		resp.ConfirmedAt = &confirmedAt
	}
	writeJSON(w, logger, http.StatusOK, resp)
}

// Webhook acknowledges chain notifications. Payments are only settled by reconciliation.
func (h *OrderHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger(r)

	fields, err := paymentRequest.DecodeFields(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, logger, err)
		return
	}
	logger.Info("webhook received", zap.Int("fields", len(fields)))
	writeJSON(w, logger, http.StatusOK, paymentResponse.WebhookResponse{Success: true})
}

func (h *OrderHandler) requestLogger(r *http.Request) *zap.Logger {
	return h.logger.With(zap.String("request_id", middleware.GetRequestID(r.Context())))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
