// Package scheduler drives periodic refresh cycles.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mohamedkhairy/market-pulse/internal/engine"
	"github.com/mohamedkhairy/market-pulse/internal/feed"
	"github.com/mohamedkhairy/market-pulse/internal/notifier"
	"github.com/mohamedkhairy/market-pulse/internal/storage"
	"github.com/mohamedkhairy/market-pulse/pkg/logger"
)

// Scheduler runs the fetch-evaluate-publish pipeline on a cron spec
type Scheduler struct {
	cron      *cron.Cron
	provider  feed.Provider
	engine    *engine.Engine
	publisher notifier.Publisher
	store     storage.AlertStore

	periods int
	ctx     context.Context
}

// New creates a scheduler wiring the provider, engine, publisher, and
// alert store into one refresh task.
func New(ctx context.Context, provider feed.Provider, eng *engine.Engine, publisher notifier.Publisher, store storage.AlertStore, periods int) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		provider:  provider,
		engine:    eng,
		publisher: publisher,
		store:     store,
		periods:   periods,
		ctx:       ctx,
	}
}

// Register adds the refresh task under the given cron spec
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Scheduler started")
}

// Stop stops the scheduler and waits for a running task to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Scheduler stopped")
}

// RunNow executes the refresh task immediately
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	started := time.Now()
	logger.Info("Starting refresh cycle", logger.String("provider", s.provider.Name()))

	symbols := s.engine.Watchlist().Symbols()
	batch, err := s.provider.Fetch(s.ctx, symbols, s.periods)
	if err != nil {
		logger.Error("Fetch failed, skipping cycle", logger.ErrorField(err))
		logger.RefreshCyclesTotal.WithLabelValues("fetch_error").Inc()
		return
	}

	result, err := s.engine.RunCycle(batch.Series)
	if err != nil {
		logger.Error("Evaluation failed", logger.ErrorField(err))
		logger.RefreshCyclesTotal.WithLabelValues("eval_error").Inc()
		return
	}

	if err := s.store.SaveAlerts(s.ctx, result.Alerts); err != nil {
		logger.Error("Failed to persist alerts", logger.ErrorField(err))
	}

	if digest := notifier.BuildDigest(result.Alerts, result.Timestamp); digest != nil {
		if err := s.publisher.PublishDigest(s.ctx, digest); err != nil {
			logger.Error("Failed to publish digest", logger.ErrorField(err))
		}
	}

	logger.RefreshCyclesTotal.WithLabelValues("ok").Inc()
	logger.CycleDuration.Observe(time.Since(started).Seconds())
}
