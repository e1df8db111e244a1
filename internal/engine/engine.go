// Package engine orchestrates one refresh cycle: ingest raw history,
// derive signals, run the rule set, and record the resulting alerts.
package engine

import (
	"sync"
	"time"

	"github.com/mohamedkhairy/market-pulse/internal/alertlog"
	"github.com/mohamedkhairy/market-pulse/internal/config"
	"github.com/mohamedkhairy/market-pulse/internal/models"
	"github.com/mohamedkhairy/market-pulse/internal/rules"
	"github.com/mohamedkhairy/market-pulse/internal/series"
	"github.com/mohamedkhairy/market-pulse/internal/signal"
	"github.com/mohamedkhairy/market-pulse/pkg/logger"
)

// CycleResult is the outcome of one evaluation cycle
type CycleResult struct {
	Timestamp time.Time      `json:"timestamp"`
	Signals   signal.Set     `json:"signals"`
	Alerts    []models.Alert `json:"alerts"`
}

// Engine ties the series store, signal evaluator, and rule engine together.
// A single lock serializes cycles; concurrent RunCycle calls queue rather
// than interleave, so the edge-trigger snapshot always refers to the
// immediately preceding completed cycle.
type Engine struct {
	watch     *config.Watchlist
	evaluator *signal.Evaluator
	ruleset   *rules.Engine
	log       *alertlog.Log

	mu   sync.Mutex
	prev rules.Snapshot
	last *CycleResult
}

// New creates an engine for a validated watchlist
func New(watch *config.Watchlist) *Engine {
	return &Engine{
		watch:     watch,
		evaluator: signal.NewEvaluator(watch),
		ruleset:   rules.NewEngine(rules.Default(watch), watch.Thresholds.MaxNoDataFraction),
		log:       alertlog.New(watch.AlertLogCapacity),
	}
}

// RunCycle ingests a fetched batch of raw history and evaluates it.
//
// Symbols absent from the batch, or whose points are all invalid, are
// treated as data gaps: their signals come out no-data and the cycle
// continues. An evaluation error (a rule referencing a signal that is
// never produced) fails the cycle and leaves the previous snapshot and
// alert log untouched.
func (e *Engine) RunCycle(data map[string][]models.PricePoint) (*CycleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	started := time.Now()
	store := series.NewStore()

	for _, sym := range e.watch.Symbols() {
		raw, ok := data[sym]
		if !ok {
			logger.Warn("No data fetched for watchlist symbol", logger.String("symbol", sym))
			logger.MissingSeriesTotal.WithLabelValues(sym).Inc()
			continue
		}
		if _, err := store.Ingest(sym, raw); err != nil {
			logger.Warn("Ingest produced no usable points",
				logger.String("symbol", sym),
				logger.ErrorField(err),
			)
			logger.MissingSeriesTotal.WithLabelValues(sym).Inc()
		}
	}

	signals := e.evaluator.Evaluate(store)

	alerts, err := e.ruleset.Evaluate(signals, e.prev, e.watch.Portfolio)
	if err != nil {
		return nil, err
	}

	// Commit state only after a successful evaluation.
	e.prev = rules.SnapshotFrom(signals, e.evaluator.EdgeSignals())
	e.log.Append(alerts...)
	for _, a := range alerts {
		logger.AlertsTotal.WithLabelValues(string(a.Severity)).Inc()
	}

	result := &CycleResult{
		Timestamp: started,
		Signals:   signals,
		Alerts:    alerts,
	}
	e.last = result

	logger.Info("Evaluation cycle complete",
		logger.Int("signals", len(signals)),
		logger.Int("no_data_signals", signals.NoDataCount()),
		logger.Int("alerts", len(alerts)),
		logger.Duration("took", time.Since(started)),
	)
	return result, nil
}

// Latest returns the most recent cycle result, or nil before the first cycle
func (e *Engine) Latest() *CycleResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Recent returns up to n alerts from the rolling history, most recent first
func (e *Engine) Recent(n int) []models.Alert {
	return e.log.Recent(n)
}

// Watchlist returns the engine's configuration document
func (e *Engine) Watchlist() *config.Watchlist {
	return e.watch
}
