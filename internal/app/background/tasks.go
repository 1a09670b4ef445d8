package background

import (
	"context"
	"sync"
	"time"

	"github.com/LavaJover/shvark-tron-gateway/internal/usecase"
	"go.uber.org/zap"
)

type Intervals struct {
	Reconcile      time.Duration
	ExpireSweep    time.Duration
	RetryCallbacks time.Duration
}

type BackgroundTasks struct {
	OrderUsecase usecase.OrderUsecase
	Intervals    Intervals
	Logger       *zap.Logger

	wg sync.WaitGroup
}

func NewBackgroundTasks(orderUC usecase.OrderUsecase, intervals Intervals, logger *zap.Logger) *BackgroundTasks {
	return &BackgroundTasks{
		OrderUsecase: orderUC,
		Intervals:    intervals,
		Logger:       logger.Named("background"),
	}
}

// StartAll launches every periodic task; they stop when ctx is cancelled.
func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	bt.startPaymentReconcile(ctx)
	bt.startOrderExpireSweep(ctx)
	bt.startCallbackRetry(ctx)
}

// Wait blocks until every task started by StartAll has returned.
func (bt *BackgroundTasks) Wait() {
	bt.wg.Wait()
}

func (bt *BackgroundTasks) startPaymentReconcile(ctx context.Context) {
	bt.run(ctx, "reconcile", bt.Intervals.Reconcile, bt.OrderUsecase.Reconcile)
}

func (bt *BackgroundTasks) startOrderExpireSweep(ctx context.Context) {
	bt.run(ctx, "expire_sweep", bt.Intervals.ExpireSweep, bt.OrderUsecase.ExpireSweep)
}

func (bt *BackgroundTasks) startCallbackRetry(ctx context.Context) {
	bt.run(ctx, "callback_retry", bt.Intervals.RetryCallbacks, bt.OrderUsecase.RetryCallbacks)
}

func (bt *BackgroundTasks) run(ctx context.Context, name string, interval time.Duration, task func(context.Context) error) {
	log := bt.Logger.With(zap.String("task", name))
	if interval <= 0 {
		log.Warn("task disabled, non-positive interval")
		return
	}

	bt.wg.Add(1)
	go func() {
		defer bt.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info("task started", zap.Duration("interval", interval))
		for {
			select {
			case <-ctx.Done():
				log.Info("task stopped")
				return
			case <-ticker.C:
				if err := task(ctx); err != nil && ctx.Err() == nil {
					log.Error("task cycle failed", zap.Error(err))
				}
			}
		}
	}()
}
