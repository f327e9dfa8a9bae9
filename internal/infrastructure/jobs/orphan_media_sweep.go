package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"kitchenware-market.backend/internal/domain/entities"
	"kitchenware-market.backend/pkg/logger"
)

const (
	DefaultSweepInterval = time.Hour
	DefaultSweepGrace    = 24 * time.Hour
)

// OrphanSweeper deletes blobs under prefixes that nothing references anymore
type OrphanSweeper interface {
	SweepOrphans(ctx context.Context, prefixes []string, grace time.Duration) (int, error)
}

// OrphanMediaSweepJob removes media left behind by failed or interrupted
// writes and by cascaded deletes.
type OrphanMediaSweepJob struct {
	sweeper  OrphanSweeper
	prefixes []string
	interval time.Duration
	grace    time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func NewOrphanMediaSweepJob(sweeper OrphanSweeper, interval, grace time.Duration) *OrphanMediaSweepJob {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if grace <= 0 {
		grace = DefaultSweepGrace
	}
	return &OrphanMediaSweepJob{
		sweeper:  sweeper,
		prefixes: []string{entities.ListingsMediaRoot, entities.ProfileMediaRoot},
		interval: interval,
		grace:    grace,
		stop:     make(chan struct{}),
	}
}

// Start runs the sweep on every tick until ctx is done or Stop is called.
func (j *OrphanMediaSweepJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting orphan media sweep job",
		zap.Duration("interval", j.interval),
		zap.Duration("grace", j.grace),
	)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Orphan media sweep job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Orphan media sweep job stopped")
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

func (j *OrphanMediaSweepJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

// RunOnce performs a single sweep and returns the number of deleted blobs.
func (j *OrphanMediaSweepJob) RunOnce(ctx context.Context) int {
	removed, err := j.sweeper.SweepOrphans(ctx, j.prefixes, j.grace)
	if err != nil {
		logger.Error(ctx, "Orphan media sweep failed", zap.Error(err))
		return removed
	}
	if removed > 0 {
		logger.Info(ctx, "Removed orphaned media", zap.Int("count", removed))
	}
	return removed
}
