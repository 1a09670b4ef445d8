package router

import (
	"net/http"

	"github.com/LavaJover/shvark-tron-gateway/internal/clock"
	"github.com/LavaJover/shvark-tron-gateway/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-tron-gateway/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-tron-gateway/internal/usecase"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Config struct {
	OrderUsecase   usecase.OrderUsecase
	Clock          clock.Clock
	MetricsHandler http.Handler
	Logger         *zap.Logger
}

func NewRouter(cfg Config) (http.Handler, error) {
	requestID, err := middleware.RequestID()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RequestLogger(cfg.Logger.Named("access")))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	serviceHandler := handlers.NewServiceHandler(cfg.Clock, cfg.Logger)
	orderHandler := handlers.NewOrderHandler(cfg.OrderUsecase, cfg.Logger.Named("http"))

	r.Get("/", serviceHandler.Index)
	r.Get("/health", serviceHandler.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/create_order", orderHandler.CreateOrder)
		r.Post("/query_order", orderHandler.QueryOrder)
		r.Post("/webhook", orderHandler.Webhook)
	})

	return r, nil
}
