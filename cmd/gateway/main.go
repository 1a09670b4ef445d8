package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/app/background"
	"github.com/LavaJover/shvark-tron-gateway/internal/app/setup"
	"github.com/LavaJover/shvark-tron-gateway/internal/config"
	"github.com/LavaJover/shvark-tron-gateway/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-tron-gateway/internal/delivery/http/router"
	"github.com/LavaJover/shvark-tron-gateway/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	flag.Usage = config.Usage
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}
	// Reading config
	cfg := config.MustLoad()

	zapLogger, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage, indexer client, notifier, metrics and publisher
	deps, err := setup.InitializeDependencies(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to init dependencies", zap.Error(err))
	}
	defer func() {
		if err := deps.Close(); err != nil {
			zapLogger.Error("failed to close dependencies", zap.Error(err))
		}
	}()

	useCases := setup.InitializeUseCases(deps)

	// Reconcile, expiry and callback retry loops
	tasks := background.NewBackgroundTasks(useCases.OrderUsecase, background.Intervals{
		Reconcile:      cfg.Reconcile.Interval,
		ExpireSweep:    cfg.Reconcile.ExpireInterval,
		RetryCallbacks: cfg.Callback.RetryInterval,
	}, zapLogger)
	tasks.StartAll(ctx)

	handler, err := router.NewRouter(router.Config{
		OrderUsecase:   useCases.OrderUsecase,
		Clock:          deps.Clock,
		MetricsHandler: deps.Metrics.Handler(),
		Logger:         zapLogger,
	})
	if err != nil {
		zapLogger.Fatal("failed to init router", zap.Error(err))
	}
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	serveErr := make(chan error, 2)
	go func() {
		zapLogger.Info("http server started", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var grpcServer *grpc.Server
	var healthServer *grpcapi.HealthServer
	if cfg.GRPCServer.Enabled {
		lis, err := net.Listen("tcp", cfg.GRPCAddress())
		if err != nil {
			zapLogger.Fatal("failed to listen grpc", zap.String("address", cfg.GRPCAddress()), zap.Error(err))
		}
		healthServer = grpcapi.NewHealthServer(deps.Ping, zapLogger.Named("health"))
		grpcServer = grpc.NewServer()
		healthServer.Register(grpcServer)
		go healthServer.Run(ctx, 15*time.Second)
		go func() {
			zapLogger.Info("grpc server started", zap.String("address", lis.Addr().String()))
			if err := grpcServer.Serve(lis); err != nil {
				serveErr <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		zapLogger.Info("shutdown signal received")
	case err := <-serveErr:
		zapLogger.Error("server failed", zap.Error(err))
		stop()
	}

	if healthServer != nil {
		healthServer.Shutdown()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("http shutdown failed", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	tasks.Wait()
	zapLogger.Info("gateway stopped")
}
