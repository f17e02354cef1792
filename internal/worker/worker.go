package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"baselinker-sync/internal/service"
	"baselinker-sync/internal/snapshot"
	"baselinker-sync/internal/summary"
	"baselinker-sync/internal/util"

	"go.uber.org/zap"
)

// SyncWorker drives the periodic background work: delta syncs on one
// ticker and daily-summary recomputation on another. A tick that lands
// while the previous sync is still running is simply dropped.
type SyncWorker struct {
	engine          *service.OrderSyncEngine
	snap            *snapshot.Snapshot
	tracker         *summary.Tracker
	syncInterval    time.Duration
	summaryInterval time.Duration
	logger          *zap.Logger
}

// NewSyncWorker creates a new sync worker
func NewSyncWorker(
	engine *service.OrderSyncEngine,
	snap *snapshot.Snapshot,
	tracker *summary.Tracker,
	syncInterval, summaryInterval time.Duration,
) *SyncWorker {
	return &SyncWorker{
		engine:          engine,
		snap:            snap,
		tracker:         tracker,
		syncInterval:    syncInterval,
		summaryInterval: summaryInterval,
		logger:          util.GetLogger(),
	}
}

// Run blocks until ctx is cancelled, firing delta syncs and summary
// recomputations on their intervals.
func (w *SyncWorker) Run(ctx context.Context) {
	log.Println("Starting sync worker...")

	syncTicker := time.NewTicker(w.syncInterval)
	defer syncTicker.Stop()
	summaryTicker := time.NewTicker(w.summaryInterval)
	defer summaryTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sync worker context cancelled, stopping...")
			return
		case <-syncTicker.C:
			if err := w.engine.DeltaSync(ctx); err != nil {
				if errors.Is(err, service.ErrSyncInProgress) {
					w.logger.Debug("Skipping delta sync tick, previous run still in flight")
					continue
				}
				w.logger.Error("Delta sync failed", zap.Error(err))
			}
		case <-summaryTicker.C:
			s := w.tracker.Recompute(w.snap.Orders(), w.snap.Products())
			w.logger.Info("Daily summary recomputed",
				zap.Int("orders", s.OrderCount),
				zap.String("total_value", s.TotalValue.String()))
		}
	}
}
