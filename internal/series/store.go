package series

import (
	"fmt"

	"github.com/mohamedkhairy/market-pulse/internal/models"
	"github.com/mohamedkhairy/market-pulse/pkg/logger"
)

// Store holds per-instrument price history for one refresh cycle and
// memoizes derived series. A Store is rebuilt from scratch every cycle;
// it is not safe for concurrent use and does not need to be, since the
// engine holds a single evaluation lock.
type Store struct {
	series  map[string]*Series
	derived map[string]*Derived
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		series:  make(map[string]*Series),
		derived: make(map[string]*Derived),
	}
}

// Ingest validates and stores raw points for a symbol.
//
// Timestamps must be strictly increasing. Points that repeat or precede the
// last accepted timestamp are dropped and the first occurrence kept; source
// feeds disagree on duplicate handling, so keep-first is the documented
// policy here. Points failing basic validation are dropped too. If nothing
// survives, ErrEmptySeries is returned and the instrument is treated as a
// full data gap for the cycle.
func (st *Store) Ingest(symbol string, raw []models.PricePoint) (*Series, error) {
	if symbol == "" {
		return nil, models.ErrInvalidSymbol
	}

	points := make([]models.PricePoint, 0, len(raw))
	dropped := 0
	for i := range raw {
		p := raw[i]
		if err := p.Validate(); err != nil {
			dropped++
			continue
		}
		if len(points) > 0 && !p.Timestamp.After(points[len(points)-1].Timestamp) {
			dropped++
			continue
		}
		points = append(points, p)
	}

	if dropped > 0 {
		logger.Warn("Dropped invalid or non-monotonic points during ingest",
			logger.String("symbol", symbol),
			logger.Int("dropped", dropped),
			logger.Int("kept", len(points)),
		)
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("ingest %s: %w", symbol, models.ErrEmptySeries)
	}

	s := &Series{symbol: symbol, points: points}
	st.series[symbol] = s
	return s, nil
}

// Get returns the series for a symbol, if ingested this cycle
func (st *Store) Get(symbol string) (*Series, bool) {
	s, ok := st.series[symbol]
	return s, ok
}

// Symbols returns the symbols with ingested data
func (st *Store) Symbols() []string {
	out := make([]string, 0, len(st.series))
	for sym := range st.series {
		out = append(out, sym)
	}
	return out
}

// Latest returns the most recent price for a symbol, or no-data
func (st *Store) Latest(symbol string) Value {
	s, ok := st.series[symbol]
	if !ok {
		return NoData()
	}
	return s.Latest()
}

// RollingMean returns the memoized rolling mean for (symbol, window).
// A missing symbol yields an all-no-data result, not an error: data gaps
// are signal-level facts, not failures.
func (st *Store) RollingMean(symbol string, window int) *Derived {
	key := fmt.Sprintf("%s|mean|%d", symbol, window)
	if d, ok := st.derived[key]; ok {
		return d
	}

	s, ok := st.series[symbol]
	if !ok {
		return &Derived{symbol: symbol}
	}

	d, err := s.RollingMean(window)
	if err != nil {
		logger.Error("Failed to compute rolling mean",
			logger.ErrorField(err),
			logger.String("symbol", symbol),
			logger.Int("window", window),
		)
		return &Derived{symbol: symbol}
	}

	st.derived[key] = d
	return d
}

// RollingReturn returns the memoized rolling return for (symbol, lookback)
func (st *Store) RollingReturn(symbol string, lookback int) *Derived {
	key := fmt.Sprintf("%s|return|%d", symbol, lookback)
	if d, ok := st.derived[key]; ok {
		return d
	}

	s, ok := st.series[symbol]
	if !ok {
		return &Derived{symbol: symbol}
	}

	d, err := s.RollingReturn(lookback)
	if err != nil {
		logger.Error("Failed to compute rolling return",
			logger.ErrorField(err),
			logger.String("symbol", symbol),
			logger.Int("lookback", lookback),
		)
		return &Derived{symbol: symbol}
	}

	st.derived[key] = d
	return d
}
