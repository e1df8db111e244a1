// Package storage persists alert history beyond the in-memory log.
package storage

import (
	"context"

	"github.com/mohamedkhairy/market-pulse/internal/models"
)

// AlertStore persists evaluated alerts
type AlertStore interface {
	SaveAlerts(ctx context.Context, alerts []models.Alert) error
	RecentAlerts(ctx context.Context, limit int) ([]models.Alert, error)
	Close() error
}

// NoopStore discards alerts, used when persistence is disabled
type NoopStore struct{}

func (NoopStore) SaveAlerts(context.Context, []models.Alert) error { return nil }

func (NoopStore) RecentAlerts(context.Context, int) ([]models.Alert, error) { return nil, nil }

func (NoopStore) Close() error { return nil }
