package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/market-pulse/internal/config"
	"github.com/mohamedkhairy/market-pulse/internal/models"
	"github.com/mohamedkhairy/market-pulse/internal/series"
)

func evalWatchlist(t *testing.T) *config.Watchlist {
	t.Helper()
	w := &config.Watchlist{
		Instruments: []models.Instrument{
			{Symbol: "SPY", Role: models.RoleEquityIndexETF},
			{Symbol: "XLY", Role: models.RoleSectorETF},
			{Symbol: "XLP", Role: models.RoleSectorETF},
			{Symbol: "XLK", Role: models.RoleSectorETF},
			{Symbol: "TLT", Role: models.RoleBondETF},
			{Symbol: "^VIX", Role: models.RoleMarketIndicator},
			{Symbol: "^TNX", Role: models.RoleMarketIndicator, Scale: 0.1},
		},
		Reference: config.Reference{
			Benchmark:  "SPY",
			Volatility: "^VIX",
			Yield:      "^TNX",
			Bond:       "TLT",
			Cyclical:   "XLY",
			Defensive:  "XLP",
		},
		Signals: config.SignalConfig{MAWindow: 3, ReturnLookback: 2, RSIPeriod: 2},
		Thresholds: config.Thresholds{
			VIXElevated: 20, VIXVeryHigh: 30, YieldHigh: 4.0,
			BreadthWeak: 1, BreadthStrong: 3, BigMovePct: 5.0,
			RSIOverbought: 70, RSIOversold: 30, MaxNoDataFraction: 0.5,
		},
		AlertLogCapacity: 10,
	}
	require.NoError(t, w.Validate())
	return w
}

func ingest(t *testing.T, store *series.Store, symbol string, prices ...float64) {
	t.Helper()
	base := time.Date(2026, 2, 2, 21, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = models.PricePoint{Timestamp: base.AddDate(0, 0, i), Price: p}
	}
	_, err := store.Ingest(symbol, points)
	require.NoError(t, err)
}

func fullStore(t *testing.T) *series.Store {
	store := series.NewStore()
	ingest(t, store, "SPY", 95, 96, 97, 98, 99, 100)
	ingest(t, store, "XLY", 50, 51, 52, 53, 54, 55)
	ingest(t, store, "XLP", 80, 79, 78, 77, 76, 75)
	ingest(t, store, "XLK", 60, 61, 62, 63, 64, 65)
	ingest(t, store, "TLT", 100, 99, 98, 97, 96, 95)
	ingest(t, store, "^VIX", 15, 15, 15, 15, 15, 15)
	ingest(t, store, "^TNX", 45, 45, 45, 45, 45, 45)
	return store
}

func TestEvaluatePriceAppliesScale(t *testing.T) {
	e := NewEvaluator(evalWatchlist(t))

	set := e.Evaluate(fullStore(t))

	tnx, ok := set.Get(PriceName("^TNX"))
	require.True(t, ok)
	assert.Equal(t, StateOK, tnx.State)
	assert.InDelta(t, 4.5, tnx.Value, 1e-9)

	spy, ok := set.Get(PriceName("SPY"))
	require.True(t, ok)
	assert.Equal(t, 100.0, spy.Value)
}

func TestEvaluateVsMA(t *testing.T) {
	e := NewEvaluator(evalWatchlist(t))

	set := e.Evaluate(fullStore(t))

	spy, ok := set.Get(VsMAName("SPY", 3))
	require.True(t, ok)
	assert.Equal(t, StateAbove, spy.State)
	assert.InDelta(t, 99.0, spy.Aux, 1e-9)
	assert.InDelta(t, (100.0-99.0)/99.0*100, spy.Value, 1e-9)

	tlt, ok := set.Get(VsMAName("TLT", 3))
	require.True(t, ok)
	assert.Equal(t, StateBelow, tlt.State)
	assert.False(t, tlt.Above())
}

func TestEvaluateDayChange(t *testing.T) {
	e := NewEvaluator(evalWatchlist(t))

	set := e.Evaluate(fullStore(t))

	spy, ok := set.Get(DayChangeName("SPY"))
	require.True(t, ok)
	assert.InDelta(t, (100.0-99.0)/99.0*100, spy.Value, 1e-9)

	vix, ok := set.Get(DayChangeName("^VIX"))
	require.True(t, ok)
	assert.InDelta(t, 0.0, vix.Value, 1e-9)
}

func TestEvaluateBreadthCountsMembersWithData(t *testing.T) {
	e := NewEvaluator(evalWatchlist(t))

	set := e.Evaluate(fullStore(t))
	breadth, ok := set.Get(BreadthName)
	require.True(t, ok)
	assert.Equal(t, 2.0, breadth.Value) // XLY and XLK above, XLP below
	assert.Equal(t, 3.0, breadth.Aux)

	// Drop one sector: the set size shrinks instead of counting it below.
	store := series.NewStore()
	ingest(t, store, "SPY", 95, 96, 97, 98, 99, 100)
	ingest(t, store, "XLY", 50, 51, 52, 53, 54, 55)
	ingest(t, store, "XLP", 80, 79, 78, 77, 76, 75)
	ingest(t, store, "^VIX", 15, 15, 15, 15, 15, 15)
	ingest(t, store, "^TNX", 45, 45, 45, 45, 45, 45)
	ingest(t, store, "TLT", 100, 99, 98, 97, 96, 95)

	set = e.Evaluate(store)
	breadth, _ = set.Get(BreadthName)
	assert.Equal(t, 1.0, breadth.Value)
	assert.Equal(t, 2.0, breadth.Aux)
}

func TestEvaluateLeadership(t *testing.T) {
	e := NewEvaluator(evalWatchlist(t))

	set := e.Evaluate(fullStore(t))

	lead, ok := set.Get(LeadershipName)
	require.True(t, ok)
	assert.Equal(t, StateAbove, lead.State)
	assert.Greater(t, lead.Value, 0.0)
}

func TestEvaluateMissingSymbolYieldsNoData(t *testing.T) {
	e := NewEvaluator(evalWatchlist(t))
	store := series.NewStore()
	ingest(t, store, "SPY", 95, 96, 97, 98, 99, 100)

	set := e.Evaluate(store)

	for _, name := range []string{
		PriceName("^VIX"),
		VsMAName("TLT", 3),
		DayChangeName("XLY"),
		BreadthName,
		LeadershipName,
	} {
		sig, ok := set.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, StateNoData, sig.State, name)
		assert.False(t, sig.HasData(), name)
	}

	spy, _ := set.Get(VsMAName("SPY", 3))
	assert.True(t, spy.HasData())
}

func TestEvaluateShortHistoryYieldsNoData(t *testing.T) {
	e := NewEvaluator(evalWatchlist(t))
	store := series.NewStore()
	ingest(t, store, "SPY", 100, 101)

	set := e.Evaluate(store)

	vsMA, _ := set.Get(VsMAName("SPY", 3))
	assert.Equal(t, StateNoData, vsMA.State)

	price, _ := set.Get(PriceName("SPY"))
	assert.True(t, price.HasData())

	change, _ := set.Get(DayChangeName("SPY"))
	assert.True(t, change.HasData())
}

func TestEvaluateRSISignal(t *testing.T) {
	e := NewEvaluator(evalWatchlist(t))

	set := e.Evaluate(fullStore(t))

	rsi, ok := set.Get(RSIName("SPY"))
	require.True(t, ok)
	assert.True(t, rsi.HasData())
	assert.Greater(t, rsi.Value, 50.0)
	assert.LessOrEqual(t, rsi.Value, 100.0)
}

func TestEdgeSignals(t *testing.T) {
	e := NewEvaluator(evalWatchlist(t))

	assert.Equal(t, []string{VsMAName("SPY", 3)}, e.EdgeSignals())
}

func TestSlugNames(t *testing.T) {
	assert.Equal(t, "vix_price", PriceName("^VIX"))
	assert.Equal(t, "tnx_price", PriceName("^TNX"))
	assert.Equal(t, "spy_vs_ma200", VsMAName("SPY", 200))
	assert.Equal(t, "brk_b_day_change", DayChangeName("BRK.B"))
}
