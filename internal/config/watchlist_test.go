package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/market-pulse/internal/models"
)

const minimalWatchlist = `
instruments:
  - symbol: SPY
    role: equity-index-etf
  - symbol: XLY
    role: sector-etf
  - symbol: XLP
    role: sector-etf
  - symbol: TLT
    role: bond-etf
  - symbol: "^VIX"
    role: market-indicator
  - symbol: "^TNX"
    role: market-indicator
    scale: 0.1
reference:
  benchmark: SPY
  volatility: "^VIX"
  yield: "^TNX"
  bond: TLT
  cyclical: XLY
  defensive: XLP
`

func writeWatchlist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWatchlistAppliesDefaults(t *testing.T) {
	w, err := LoadWatchlist(writeWatchlist(t, minimalWatchlist))

	require.NoError(t, err)
	assert.Equal(t, 200, w.Signals.MAWindow)
	assert.Equal(t, 63, w.Signals.ReturnLookback)
	assert.Equal(t, 14, w.Signals.RSIPeriod)
	assert.Equal(t, 20.0, w.Thresholds.VIXElevated)
	assert.Equal(t, 30.0, w.Thresholds.VIXVeryHigh)
	assert.Equal(t, 4.0, w.Thresholds.YieldHigh)
	assert.Equal(t, 5.0, w.Thresholds.BigMovePct)
	assert.Equal(t, 0.5, w.Thresholds.MaxNoDataFraction)
	assert.Equal(t, 50, w.AlertLogCapacity)
}

func TestLoadWatchlistParsesScale(t *testing.T) {
	w, err := LoadWatchlist(writeWatchlist(t, minimalWatchlist))

	require.NoError(t, err)
	tnx, ok := w.Instrument("^TNX")
	require.True(t, ok)
	assert.Equal(t, 0.1, tnx.Scale)

	spy, ok := w.Instrument("SPY")
	require.True(t, ok)
	assert.Equal(t, 1.0, spy.EffectiveScale())
}

func TestLoadWatchlistMissingFile(t *testing.T) {
	_, err := LoadWatchlist(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestWatchlistValidateDuplicateSymbol(t *testing.T) {
	w := DefaultWatchlist()
	w.Instruments = append(w.Instruments, models.Instrument{Symbol: "SPY", Role: models.RoleStock})

	err := w.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestWatchlistValidateUnknownReference(t *testing.T) {
	w := DefaultWatchlist()
	w.Reference.Benchmark = "VTI"

	err := w.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnknownInstrument)
}

func TestWatchlistValidateUnknownPortfolioSymbol(t *testing.T) {
	w := DefaultWatchlist()
	w.Portfolio = []models.PortfolioPosition{{Symbol: "NOPE", Shares: 1}}

	err := w.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnknownInstrument)
}

func TestWatchlistValidateThresholdOrdering(t *testing.T) {
	w := DefaultWatchlist()
	w.Thresholds.BreadthWeak = 9
	require.Error(t, w.Validate())

	w = DefaultWatchlist()
	w.Thresholds.VIXElevated = 35
	require.Error(t, w.Validate())

	w = DefaultWatchlist()
	w.Thresholds.MaxNoDataFraction = 1.5
	require.Error(t, w.Validate())
}

func TestDefaultWatchlistIsValid(t *testing.T) {
	w := DefaultWatchlist()

	require.NoError(t, w.Validate())
	assert.Len(t, w.Sectors(), 11)
	assert.Equal(t, "SPY", w.Reference.Benchmark)
	assert.Equal(t, 200, w.MinHistory())
}

func TestMinHistoryTracksLargestWindow(t *testing.T) {
	w := DefaultWatchlist()
	w.Signals.MAWindow = 10
	w.Signals.ReturnLookback = 40
	w.Signals.RSIPeriod = 14

	assert.Equal(t, 41, w.MinHistory())
}
