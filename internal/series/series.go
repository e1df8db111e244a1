package series

import (
	"github.com/mohamedkhairy/market-pulse/internal/models"
)

// Series is an ordered-by-time price history for one instrument.
// Timestamps are strictly increasing; gaps (non-trading days) are skipped,
// never interpolated.
type Series struct {
	symbol string
	points []models.PricePoint
}

// Symbol returns the instrument symbol
func (s *Series) Symbol() string {
	return s.symbol
}

// Len returns the number of points
func (s *Series) Len() int {
	return len(s.points)
}

// At returns the point at index i
func (s *Series) At(i int) models.PricePoint {
	return s.points[i]
}

// Latest returns the most recent price, or no-data for an empty series
func (s *Series) Latest() Value {
	if len(s.points) == 0 {
		return NoData()
	}
	return Of(s.points[len(s.points)-1].Price)
}

// Prev returns the price one period before the latest, or no-data
func (s *Series) Prev() Value {
	if len(s.points) < 2 {
		return NoData()
	}
	return Of(s.points[len(s.points)-2].Price)
}

// RollingMean computes the trailing arithmetic mean over window points,
// inclusive of the current index. Values before index window-1 are no-data.
func (s *Series) RollingMean(window int) (*Derived, error) {
	if window < 1 {
		return nil, models.ErrInvalidWindow
	}

	values := make([]Value, len(s.points))
	var sum float64
	for i, p := range s.points {
		sum += p.Price
		if i >= window {
			sum -= s.points[i-window].Price
		}
		if i >= window-1 {
			values[i] = Of(sum / float64(window))
		}
	}

	return &Derived{symbol: s.symbol, values: values}, nil
}

// RollingReturn computes the percentage return over a fixed lookback:
// (p[i] - p[i-lookback]) / p[i-lookback]. Values before index lookback are
// no-data, as is any index whose base price is zero.
func (s *Series) RollingReturn(lookback int) (*Derived, error) {
	if lookback < 1 {
		return nil, models.ErrInvalidWindow
	}

	values := make([]Value, len(s.points))
	for i := lookback; i < len(s.points); i++ {
		base := s.points[i-lookback].Price
		if base == 0 {
			continue // leave no-data, never infinite
		}
		values[i] = Of((s.points[i].Price - base) / base)
	}

	return &Derived{symbol: s.symbol, values: values}, nil
}

// Derived is a series computed from a source Series, index-aligned with it.
// Undefined positions stay no-data rather than zero.
type Derived struct {
	symbol string
	values []Value
}

// Symbol returns the source instrument symbol
func (d *Derived) Symbol() string {
	return d.symbol
}

// Len returns the number of positions (same as the source series)
func (d *Derived) Len() int {
	return len(d.values)
}

// At returns the value at index i
func (d *Derived) At(i int) Value {
	if i < 0 || i >= len(d.values) {
		return NoData()
	}
	return d.values[i]
}

// Latest returns the value at the last index, or no-data
func (d *Derived) Latest() Value {
	if len(d.values) == 0 {
		return NoData()
	}
	return d.values[len(d.values)-1]
}

// Prev returns the value one period before the latest, or no-data.
// Edge-triggered rules compare Latest against the prior cycle, but tests
// and the evaluator also need the in-series previous value.
func (d *Derived) Prev() Value {
	if len(d.values) < 2 {
		return NoData()
	}
	return d.values[len(d.values)-2]
}
