package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/market-pulse/internal/config"
	"github.com/mohamedkhairy/market-pulse/internal/models"
	"github.com/mohamedkhairy/market-pulse/internal/signal"
)

// quietSignals returns a full signal set for the default watchlist in which
// no rule fires: benchmark in an uptrend, calm VIX, moderate yield and RSI,
// middling breadth, both leadership legs above their MA.
func quietSignals(w *config.Watchlist) signal.Set {
	window := w.Signals.MAWindow
	return setOf(
		signal.Signal{Name: signal.VsMAName(w.Reference.Benchmark, window), State: signal.StateAbove, Value: 2.0, Aux: 100},
		signal.Signal{Name: signal.PriceName(w.Reference.Volatility), State: signal.StateOK, Value: 15.0},
		signal.Signal{Name: signal.PriceName(w.Reference.Yield), State: signal.StateOK, Value: 3.5},
		signal.Signal{Name: signal.RSIName(w.Reference.Benchmark), State: signal.StateOK, Value: 50.0},
		signal.Signal{Name: signal.BreadthName, State: signal.StateOK, Value: 5, Aux: 11},
		signal.Signal{Name: signal.VsMAName(w.Reference.Cyclical, window), State: signal.StateAbove, Value: 1.0},
		signal.Signal{Name: signal.VsMAName(w.Reference.Defensive, window), State: signal.StateAbove, Value: 1.0},
		signal.Signal{Name: signal.VsMAName(w.Reference.Bond, window), State: signal.StateBelow, Value: -1.0},
	)
}

func defaultEngine(w *config.Watchlist) *Engine {
	return NewEngine(Default(w), w.Thresholds.MaxNoDataFraction)
}

func set(signals signal.Set, sig signal.Signal) signal.Set {
	signals[sig.Name] = sig
	return signals
}

func TestDefaultsQuietMarketEmitsNothing(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)

	alerts, err := engine.Evaluate(quietSignals(w), nil, nil)

	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDefaultsBenchmarkCrossDown(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)
	benchVsMA := signal.VsMAName(w.Reference.Benchmark, w.Signals.MAWindow)

	signals := set(quietSignals(w),
		signal.Signal{Name: benchVsMA, State: signal.StateBelow, Value: -5.0, Aux: 100})
	prev := Snapshot{benchVsMA: signal.StateAbove}

	alerts, err := engine.Evaluate(signals, prev, nil)

	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "benchmark_fell_below_ma", alerts[0].RuleID)
	assert.Equal(t, models.SeverityWarning, alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "SPY")
	assert.Contains(t, alerts[0].Message, "200-day")
}

func TestDefaultsBenchmarkCrossUp(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)
	benchVsMA := signal.VsMAName(w.Reference.Benchmark, w.Signals.MAWindow)

	prev := Snapshot{benchVsMA: signal.StateBelow}

	alerts, err := engine.Evaluate(quietSignals(w), prev, nil)

	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "benchmark_climbed_above_ma", alerts[0].RuleID)
	assert.Equal(t, models.SeveritySuccess, alerts[0].Severity)
}

func TestDefaultsBenchmarkSteadyBelow(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)
	benchVsMA := signal.VsMAName(w.Reference.Benchmark, w.Signals.MAWindow)

	signals := set(quietSignals(w),
		signal.Signal{Name: benchVsMA, State: signal.StateBelow, Value: -3.0, Aux: 100})
	prev := Snapshot{benchVsMA: signal.StateBelow}

	alerts, err := engine.Evaluate(signals, prev, nil)

	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "benchmark_remains_below_ma", alerts[0].RuleID)
	assert.Equal(t, models.SeverityWarning, alerts[0].Severity)
}

func TestDefaultsNoSnapshotMeansNoEdge(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)
	benchVsMA := signal.VsMAName(w.Reference.Benchmark, w.Signals.MAWindow)

	signals := set(quietSignals(w),
		signal.Signal{Name: benchVsMA, State: signal.StateBelow, Value: -3.0, Aux: 100})

	// First cycle has no prior snapshot: only the steady rule may fire.
	alerts, err := engine.Evaluate(signals, nil, nil)

	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "benchmark_remains_below_ma", alerts[0].RuleID)
}

func TestDefaultsVolatilityTiers(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)
	vix := signal.PriceName(w.Reference.Volatility)

	cases := []struct {
		name   string
		level  float64
		ruleID string
	}{
		{"calm", 18.0, ""},
		{"at elevated threshold", 20.0, ""},
		{"elevated", 25.0, "volatility_elevated"},
		{"at very high threshold", 30.0, "volatility_very_high"},
		{"very high preempts elevated", 32.0, "volatility_very_high"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			signals := set(quietSignals(w),
				signal.Signal{Name: vix, State: signal.StateOK, Value: tc.level})

			alerts, err := engine.Evaluate(signals, nil, nil)
			require.NoError(t, err)

			if tc.ruleID == "" {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, tc.ruleID, alerts[0].RuleID)
			assert.Equal(t, models.SeverityWarning, alerts[0].Severity)
		})
	}
}

func TestDefaultsYieldHigh(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)
	yield := signal.PriceName(w.Reference.Yield)

	signals := set(quietSignals(w),
		signal.Signal{Name: yield, State: signal.StateOK, Value: 4.0})
	alerts, err := engine.Evaluate(signals, nil, nil)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "yield_high", alerts[0].RuleID)
	assert.Contains(t, alerts[0].Message, "4.00%")

	signals = set(signals,
		signal.Signal{Name: yield, State: signal.StateOK, Value: 3.99})
	alerts, err = engine.Evaluate(signals, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDefaultsRSIExtremes(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)
	rsi := signal.RSIName(w.Reference.Benchmark)

	signals := set(quietSignals(w),
		signal.Signal{Name: rsi, State: signal.StateOK, Value: 72.0})
	alerts, err := engine.Evaluate(signals, nil, nil)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "benchmark_rsi_overbought", alerts[0].RuleID)
	assert.Equal(t, models.SeverityInfo, alerts[0].Severity)

	signals = set(signals,
		signal.Signal{Name: rsi, State: signal.StateOK, Value: 28.0})
	alerts, err = engine.Evaluate(signals, nil, nil)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "benchmark_rsi_oversold", alerts[0].RuleID)
}

func TestDefaultsBreadthTiers(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)

	signals := set(quietSignals(w),
		signal.Signal{Name: signal.BreadthName, State: signal.StateOK, Value: 3, Aux: 11})
	alerts, err := engine.Evaluate(signals, nil, nil)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "breadth_weak", alerts[0].RuleID)
	assert.Equal(t, models.SeverityWarning, alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "3 of 11")

	signals = set(signals,
		signal.Signal{Name: signal.BreadthName, State: signal.StateOK, Value: 8, Aux: 11})
	alerts, err = engine.Evaluate(signals, nil, nil)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "breadth_strong", alerts[0].RuleID)
	assert.Equal(t, models.SeveritySuccess, alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "8 of 11")
}

func TestDefaultsLeadershipPairIsExclusive(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)
	window := w.Signals.MAWindow
	cyc := signal.VsMAName(w.Reference.Cyclical, window)
	def := signal.VsMAName(w.Reference.Defensive, window)

	signals := set(quietSignals(w),
		signal.Signal{Name: def, State: signal.StateBelow, Value: -2.0})
	alerts, err := engine.Evaluate(signals, nil, nil)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "cyclical_leadership", alerts[0].RuleID)
	assert.Equal(t, models.SeveritySuccess, alerts[0].Severity)

	signals = set(signals,
		signal.Signal{Name: cyc, State: signal.StateBelow, Value: -2.0})
	signals = set(signals,
		signal.Signal{Name: def, State: signal.StateAbove, Value: 2.0})
	alerts, err = engine.Evaluate(signals, nil, nil)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "defensive_leadership", alerts[0].RuleID)
	assert.Equal(t, models.SeverityWarning, alerts[0].Severity)
}

func TestDefaultsSafeHavenRotation(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)
	window := w.Signals.MAWindow

	signals := set(quietSignals(w),
		signal.Signal{Name: signal.VsMAName(w.Reference.Bond, window), State: signal.StateAbove, Value: 1.5})
	signals = set(signals,
		signal.Signal{Name: signal.VsMAName(w.Reference.Benchmark, window), State: signal.StateBelow, Value: -1.5, Aux: 100})
	prev := Snapshot{signal.VsMAName(w.Reference.Benchmark, window): signal.StateBelow}

	alerts, err := engine.Evaluate(signals, prev, nil)

	require.NoError(t, err)
	ids := ruleIDs(alerts)
	assert.Contains(t, ids, "safe_haven_rotation")
	assert.Contains(t, ids, "benchmark_remains_below_ma")

	// Bond strength alone, with equities healthy, is not a rotation.
	signals = quietSignals(w)
	signals = set(signals,
		signal.Signal{Name: signal.VsMAName(w.Reference.Bond, window), State: signal.StateAbove, Value: 1.5})
	alerts, err = engine.Evaluate(signals, nil, nil)
	require.NoError(t, err)
	assert.NotContains(t, ruleIDs(alerts), "safe_haven_rotation")
}

func TestDefaultsPortfolioTargetReached(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)

	positions := []models.PortfolioPosition{{Symbol: "AAPL", Shares: 10, TargetPrice: 150}}
	signals := set(quietSignals(w),
		signal.Signal{Name: signal.PriceName("AAPL"), State: signal.StateOK, Value: 150.0})
	signals = set(signals,
		signal.Signal{Name: signal.DayChangeName("AAPL"), State: signal.StateOK, Value: 1.0})

	alerts, err := engine.Evaluate(signals, nil, positions)

	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "position_target_reached", alerts[0].RuleID)
	assert.Equal(t, models.SeveritySuccess, alerts[0].Severity)
	assert.Equal(t, "AAPL", alerts[0].Symbol)
}

func TestDefaultsPortfolioStopLossBoundary(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)
	positions := []models.PortfolioPosition{{Symbol: "AAPL", Shares: 10, StopLoss: 130}}

	cases := []struct {
		name     string
		price    float64
		breached bool
	}{
		{"just below stop", 129.99, true},
		{"exactly at stop", 130.00, true},
		{"just above stop", 130.01, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			signals := set(quietSignals(w),
				signal.Signal{Name: signal.PriceName("AAPL"), State: signal.StateOK, Value: tc.price})
			signals = set(signals,
				signal.Signal{Name: signal.DayChangeName("AAPL"), State: signal.StateOK, Value: -1.0})

			alerts, err := engine.Evaluate(signals, nil, positions)
			require.NoError(t, err)

			if !tc.breached {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, "position_stop_loss_breached", alerts[0].RuleID)
			assert.Equal(t, models.SeverityCritical, alerts[0].Severity)
		})
	}
}

func TestDefaultsPortfolioOutsizedMove(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)
	positions := []models.PortfolioPosition{{Symbol: "MSFT", Shares: 5}}

	signals := set(quietSignals(w),
		signal.Signal{Name: signal.PriceName("MSFT"), State: signal.StateOK, Value: 400.0})
	signals = set(signals,
		signal.Signal{Name: signal.DayChangeName("MSFT"), State: signal.StateOK, Value: -5.0})

	alerts, err := engine.Evaluate(signals, nil, positions)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "position_outsized_move", alerts[0].RuleID)
	assert.Contains(t, alerts[0].Message, "MSFT")

	signals = set(signals,
		signal.Signal{Name: signal.DayChangeName("MSFT"), State: signal.StateOK, Value: 4.9})
	alerts, err = engine.Evaluate(signals, nil, positions)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDefaultsPortfolioZeroLevelsNeverFire(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)
	positions := []models.PortfolioPosition{{Symbol: "GLD", Shares: 2}}

	signals := set(quietSignals(w),
		signal.Signal{Name: signal.PriceName("GLD"), State: signal.StateOK, Value: 0.01})
	signals = set(signals,
		signal.Signal{Name: signal.DayChangeName("GLD"), State: signal.StateOK, Value: 0.5})

	alerts, err := engine.Evaluate(signals, nil, positions)

	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDefaultsMissingPositionSignalIsConfigError(t *testing.T) {
	w := config.DefaultWatchlist()
	engine := defaultEngine(w)
	positions := []models.PortfolioPosition{{Symbol: "ZZZZ", Shares: 1}}

	_, err := engine.Evaluate(quietSignals(w), nil, positions)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnknownSignal)
}
