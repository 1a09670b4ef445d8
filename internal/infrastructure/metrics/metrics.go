package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GatewayMetrics holds every collector the gateway exports.
type GatewayMetrics struct {
	registry *prometheus.Registry

	// Created orders
	OrdersCreatedTotal       *prometheus.CounterVec
	OrdersCreatedAmountTotal *prometheus.CounterVec

	// Completed orders
	OrdersCompletedTotal       *prometheus.CounterVec
	OrdersCompletedAmountTotal *prometheus.CounterVec
	OrderProcessingDuration    *prometheus.HistogramVec

	OrdersExpiredTotal prometheus.Counter
	PendingOrders      prometheus.Gauge

	// Reconciliation
	ReconcileDuration    prometheus.Histogram
	IndexerRequestsTotal *prometheus.CounterVec

	// Callbacks
	CallbackDeliveriesTotal *prometheus.CounterVec

	// Errors
	OrderErrorsTotal *prometheus.CounterVec
}

// NewGatewayMetrics registers the collectors on a fresh registry together with
// the Go runtime and process collectors.
func NewGatewayMetrics() *GatewayMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := newGatewayMetrics(registry)
	m.registry = registry
	return m
}

func newGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	factory := promauto.With(reg)
	return &GatewayMetrics{
		OrdersCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_orders_created_total",
				Help: "Total number of created payment orders",
			},
			[]string{"merchant_id", "currency"},
		),

		OrdersCreatedAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_orders_created_amount_total",
				Help: "Total amount of created payment orders",
			},
			[]string{"currency"},
		),

		OrdersCompletedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_orders_completed_total",
				Help: "Total number of orders completed by an on-chain transfer",
			},
			[]string{"merchant_id", "currency"},
		),

		OrdersCompletedAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_orders_completed_amount_total",
				Help: "Total amount of completed orders",
			},
			[]string{"currency"},
		),

		OrderProcessingDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_order_processing_duration_seconds",
				Help:    "Time from order creation to completion",
				Buckets: []float64{30, 60, 120, 300, 600, 900, 1800, 3600},
			},
			[]string{"currency"},
		),

		OrdersExpiredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_orders_expired_total",
				Help: "Total number of orders expired by the sweep",
			},
		),

		PendingOrders: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gateway_pending_orders",
				Help: "Pending orders seen by the last reconcile cycle",
			},
		),

		ReconcileDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gateway_reconcile_duration_seconds",
				Help:    "Duration of one reconcile cycle",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),

		IndexerRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_indexer_requests_total",
				Help: "Requests to the chain indexer by endpoint and result",
			},
			[]string{"endpoint", "result"},
		),

		CallbackDeliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_callback_deliveries_total",
				Help: "Merchant callback attempts by result",
			},
			[]string{"result"},
		),

		OrderErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_order_errors_total",
				Help: "Errors by operation and type",
			},
			[]string{"operation", "error_type"},
		),
	}
}

func (m *GatewayMetrics) RecordOrderCreated(merchantID, currency string, amount float64) {
	m.OrdersCreatedTotal.WithLabelValues(merchantID, currency).Inc()
	m.OrdersCreatedAmountTotal.WithLabelValues(currency).Add(amount)
}

func (m *GatewayMetrics) RecordOrderCompleted(merchantID, currency string, amount, durationSeconds float64) {
	m.OrdersCompletedTotal.WithLabelValues(merchantID, currency).Inc()
	m.OrdersCompletedAmountTotal.WithLabelValues(currency).Add(amount)
	if durationSeconds >= 0 {
		m.OrderProcessingDuration.WithLabelValues(currency).Observe(durationSeconds)
	}
}

func (m *GatewayMetrics) RecordOrdersExpired(count int) {
	m.OrdersExpiredTotal.Add(float64(count))
}

func (m *GatewayMetrics) RecordPendingOrders(count int) {
	m.PendingOrders.Set(float64(count))
}

func (m *GatewayMetrics) RecordReconcileDuration(durationSeconds float64) {
	m.ReconcileDuration.Observe(durationSeconds)
}

func (m *GatewayMetrics) RecordIndexerRequest(endpoint string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.IndexerRequestsTotal.WithLabelValues(endpoint, result).Inc()
}

func (m *GatewayMetrics) RecordCallback(result string) {
	m.CallbackDeliveriesTotal.WithLabelValues(result).Inc()
}

func (m *GatewayMetrics) RecordError(operation, errorType string) {
	m.OrderErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *GatewayMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
