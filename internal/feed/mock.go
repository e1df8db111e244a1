package feed

import (
	"context"
	"hash/fnv"
	"math"
	"time"

	"github.com/mohamedkhairy/market-pulse/internal/models"
)

// MockProvider generates deterministic synthetic history, for development
// and demos without network access. The same symbol always yields the same
// shape of series.
type MockProvider struct {
	now func() time.Time
}

// NewMockProvider creates a mock provider
func NewMockProvider() *MockProvider {
	return &MockProvider{now: time.Now}
}

func (p *MockProvider) Name() string { return "mock" }

// Fetch generates periods daily points per symbol, a gentle sine wave
// around a symbol-derived base price.
func (p *MockProvider) Fetch(_ context.Context, symbols []string, periods int) (*Batch, error) {
	batch := &Batch{
		FetchedAt: p.now(),
		Series:    make(map[string][]models.PricePoint, len(symbols)),
	}

	end := p.now().UTC().Truncate(24 * time.Hour)
	for _, sym := range symbols {
		base := basePrice(sym)
		points := make([]models.PricePoint, 0, periods)
		for i := 0; i < periods; i++ {
			day := periods - 1 - i
			phase := float64(i) / 20.0
			price := base * (1 + 0.05*math.Sin(phase) + 0.0002*float64(i))
			points = append(points, models.PricePoint{
				Timestamp: end.AddDate(0, 0, -day),
				Price:     price,
			})
		}
		batch.Series[sym] = points
	}
	return batch, nil
}

// basePrice hashes the symbol into a stable price between 20 and 520
func basePrice(symbol string) float64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return 20 + float64(h.Sum32()%500)
}
