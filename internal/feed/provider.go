// Package feed fetches raw daily price history for watchlist symbols.
package feed

import (
	"context"
	"time"

	"github.com/mohamedkhairy/market-pulse/internal/models"
)

// Batch is one fetch result across symbols. A symbol absent from Series
// is an explicit data gap for the cycle, never an implicit zero.
type Batch struct {
	FetchedAt time.Time
	Series    map[string][]models.PricePoint
}

// Provider fetches up to periods daily closes per symbol. A provider
// records per-symbol failures inside the batch (by omitting the symbol)
// and returns an error only when the whole fetch is unusable.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, symbols []string, periods int) (*Batch, error)
}
