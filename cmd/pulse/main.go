package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohamedkhairy/market-pulse/internal/api"
	"github.com/mohamedkhairy/market-pulse/internal/config"
	"github.com/mohamedkhairy/market-pulse/internal/engine"
	"github.com/mohamedkhairy/market-pulse/internal/feed"
	"github.com/mohamedkhairy/market-pulse/internal/notifier"
	"github.com/mohamedkhairy/market-pulse/internal/scheduler"
	"github.com/mohamedkhairy/market-pulse/internal/storage"
	"github.com/mohamedkhairy/market-pulse/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting market-pulse",
		logger.String("environment", cfg.Environment),
		logger.String("provider", cfg.Provider.Name),
		logger.String("refresh_cron", cfg.RefreshCron),
		logger.Int("api_port", cfg.API.Port),
	)

	// Load the watchlist document, falling back to the built-in default
	// when no file is present.
	watch, err := loadWatchlist(cfg.WatchlistPath)
	if err != nil {
		logger.Fatal("Failed to load watchlist", logger.ErrorField(err))
	}
	logger.Info("Watchlist loaded",
		logger.Int("instruments", len(watch.Instruments)),
		logger.Int("positions", len(watch.Portfolio)),
		logger.Int("ma_window", watch.Signals.MAWindow),
	)

	if cfg.FetchPeriods < watch.MinHistory() {
		logger.Warn("FETCH_PERIODS below minimum required history, trend signals will be no-data",
			logger.Int("fetch_periods", cfg.FetchPeriods),
			logger.Int("min_history", watch.MinHistory()),
		)
	}

	// Market data provider
	var provider feed.Provider
	switch cfg.Provider.Name {
	case "mock":
		provider = feed.NewMockProvider()
	default:
		provider = feed.NewYahooProvider(cfg.Provider.Timeout)
	}

	// Optional alert persistence
	var store storage.AlertStore = storage.NoopStore{}
	if cfg.Database.Enabled {
		pg, err := storage.NewPostgresStore(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to initialize Postgres store", logger.ErrorField(err))
		}
		store = pg
	}
	defer store.Close()

	// Optional digest publisher
	var publisher notifier.Publisher = notifier.NoopPublisher{}
	if cfg.Redis.Enabled {
		redisPub, err := notifier.NewRedisPublisher(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to initialize Redis publisher", logger.ErrorField(err))
		}
		publisher = redisPub
	}
	defer publisher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(watch)

	sched := scheduler.New(ctx, provider, eng, publisher, store, cfg.FetchPeriods)
	if err := sched.Register(cfg.RefreshCron); err != nil {
		logger.Fatal("Failed to register refresh schedule", logger.ErrorField(err))
	}
	sched.Start()
	defer sched.Stop()

	if cfg.RunOnStart {
		go sched.RunNow()
	}

	// HTTP server
	router := api.NewHandler(eng).Router(cfg.API.JWTSecret)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", logger.ErrorField(err))
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutting down market-pulse")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down HTTP server", logger.ErrorField(err))
	}

	logger.Info("market-pulse stopped")
}

func loadWatchlist(path string) (*config.Watchlist, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warn("Watchlist file not found, using built-in default",
			logger.String("path", path),
		)
		return config.DefaultWatchlist(), nil
	}
	return config.LoadWatchlist(path)
}
