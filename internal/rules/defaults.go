package rules

import (
	"fmt"
	"math"

	"github.com/mohamedkhairy/market-pulse/internal/config"
	"github.com/mohamedkhairy/market-pulse/internal/models"
	"github.com/mohamedkhairy/market-pulse/internal/signal"
)

// Default builds the standard rule set for a watchlist. Severity is fixed
// per rule here, at definition time.
func Default(w *config.Watchlist) []Rule {
	window := w.Signals.MAWindow
	t := w.Thresholds

	benchmark := w.Reference.Benchmark
	benchVsMA := signal.VsMAName(benchmark, window)
	vixPrice := signal.PriceName(w.Reference.Volatility)
	yieldPrice := signal.PriceName(w.Reference.Yield)
	bondVsMA := signal.VsMAName(w.Reference.Bond, window)
	cycVsMA := signal.VsMAName(w.Reference.Cyclical, window)
	defVsMA := signal.VsMAName(w.Reference.Defensive, window)
	benchRSI := signal.RSIName(benchmark)

	return []Rule{
		// Trend reversal: fires only on a state transition between cycles.
		{
			ID:        "benchmark_fell_below_ma",
			Group:     GroupTrendReversal,
			Severity:  models.SeverityWarning,
			Exclusive: "benchmark_trend",
			Requires:  []string{benchVsMA},
			When: func(ctx *Context) bool {
				prev, ok := ctx.PrevState(benchVsMA)
				return ok && prev == signal.StateAbove && !ctx.Sig(benchVsMA).Above()
			},
			Message: func(ctx *Context) string {
				return fmt.Sprintf("%s fell below its %d-day moving average. This momentum shift suggests increasing caution on equities.",
					benchmark, window)
			},
		},
		{
			ID:        "benchmark_climbed_above_ma",
			Group:     GroupTrendReversal,
			Severity:  models.SeveritySuccess,
			Exclusive: "benchmark_trend",
			Requires:  []string{benchVsMA},
			When: func(ctx *Context) bool {
				prev, ok := ctx.PrevState(benchVsMA)
				return ok && prev == signal.StateBelow && ctx.Sig(benchVsMA).Above()
			},
			Message: func(ctx *Context) string {
				return fmt.Sprintf("%s climbed back above its %d-day moving average, signaling improving momentum. Consider increasing equity exposure.",
					benchmark, window)
			},
		},
		// Steady state: suppressed whenever the reversal rule already fired.
		// A sustained uptrend emits nothing, to avoid repeating good news
		// every cycle.
		{
			ID:        "benchmark_remains_below_ma",
			Group:     GroupTrendSteady,
			Severity:  models.SeverityWarning,
			Exclusive: "benchmark_trend",
			Requires:  []string{benchVsMA},
			When: func(ctx *Context) bool {
				return !ctx.Sig(benchVsMA).Above()
			},
			Message: func(ctx *Context) string {
				return fmt.Sprintf("%s remains below its %d-day moving average, indicating continued weak momentum for equities.",
					benchmark, window)
			},
		},
		// Volatility tiers: the higher tier preempts the lower one.
		{
			ID:        "volatility_very_high",
			Group:     GroupVolatility,
			Severity:  models.SeverityWarning,
			Exclusive: "volatility",
			Requires:  []string{vixPrice},
			When: func(ctx *Context) bool {
				return ctx.Sig(vixPrice).Value >= t.VIXVeryHigh
			},
			Message: func(ctx *Context) string {
				return fmt.Sprintf("Market volatility is very high (VIX ~ %.1f). Consider hedging or reducing risk exposure.",
					ctx.Sig(vixPrice).Value)
			},
		},
		{
			ID:        "volatility_elevated",
			Group:     GroupVolatility,
			Severity:  models.SeverityWarning,
			Exclusive: "volatility",
			Requires:  []string{vixPrice},
			When: func(ctx *Context) bool {
				return ctx.Sig(vixPrice).Value > t.VIXElevated
			},
			Message: func(ctx *Context) string {
				return fmt.Sprintf("Market volatility is elevated (VIX ~ %.1f). Caution is advised with risk assets.",
					ctx.Sig(vixPrice).Value)
			},
		},
		// Macro: rate regime.
		{
			ID:       "yield_high",
			Group:    GroupMacro,
			Severity: models.SeverityWarning,
			Requires: []string{yieldPrice},
			When: func(ctx *Context) bool {
				return ctx.Sig(yieldPrice).Value >= t.YieldHigh
			},
			Message: func(ctx *Context) string {
				return fmt.Sprintf("10-year Treasury yield is %.2f%%, which is relatively high. High rates can pressure stocks and make bonds more attractive.",
					ctx.Sig(yieldPrice).Value)
			},
		},
		// Momentum extremes on the benchmark RSI.
		{
			ID:        "benchmark_rsi_overbought",
			Group:     GroupMomentum,
			Severity:  models.SeverityInfo,
			Exclusive: "benchmark_momentum",
			Requires:  []string{benchRSI},
			When: func(ctx *Context) bool {
				return ctx.Sig(benchRSI).Value >= t.RSIOverbought
			},
			Message: func(ctx *Context) string {
				return fmt.Sprintf("%s RSI is %.0f, in overbought territory; momentum may be stretched.",
					benchmark, ctx.Sig(benchRSI).Value)
			},
		},
		{
			ID:        "benchmark_rsi_oversold",
			Group:     GroupMomentum,
			Severity:  models.SeverityInfo,
			Exclusive: "benchmark_momentum",
			Requires:  []string{benchRSI},
			When: func(ctx *Context) bool {
				return ctx.Sig(benchRSI).Value <= t.RSIOversold
			},
			Message: func(ctx *Context) string {
				return fmt.Sprintf("%s RSI is %.0f, in oversold territory; selling pressure may be exhausted.",
					benchmark, ctx.Sig(benchRSI).Value)
			},
		},
		// Breadth tiers: weak and strong are mutually exclusive by
		// construction, the shared key makes that explicit.
		{
			ID:        "breadth_weak",
			Group:     GroupBreadth,
			Severity:  models.SeverityWarning,
			Exclusive: "breadth",
			Requires:  []string{signal.BreadthName},
			When: func(ctx *Context) bool {
				return int(ctx.Sig(signal.BreadthName).Value) <= t.BreadthWeak
			},
			Message: func(ctx *Context) string {
				sig := ctx.Sig(signal.BreadthName)
				return fmt.Sprintf("Only %d of %d sectors are above their %d-day MA. Market breadth is very weak, reflecting a risk-off environment.",
					int(sig.Value), int(sig.Aux), window)
			},
		},
		{
			ID:        "breadth_strong",
			Group:     GroupBreadth,
			Severity:  models.SeveritySuccess,
			Exclusive: "breadth",
			Requires:  []string{signal.BreadthName},
			When: func(ctx *Context) bool {
				return int(ctx.Sig(signal.BreadthName).Value) >= t.BreadthStrong
			},
			Message: func(ctx *Context) string {
				sig := ctx.Sig(signal.BreadthName)
				return fmt.Sprintf("%d of %d sectors are above their %d-day MA. Market breadth is strong, reflecting a broad risk-on rally.",
					int(sig.Value), int(sig.Aux), window)
			},
		},
		// Sector leadership: at most one side of the pair fires.
		{
			ID:        "cyclical_leadership",
			Group:     GroupLeadership,
			Severity:  models.SeveritySuccess,
			Exclusive: "leadership",
			Requires:  []string{cycVsMA, defVsMA},
			When: func(ctx *Context) bool {
				return ctx.Sig(cycVsMA).Above() && !ctx.Sig(defVsMA).Above()
			},
			Message: func(ctx *Context) string {
				return fmt.Sprintf("Cyclical sectors (%s) are strong while defensives (%s) lag, indicating investors are leaning risk-on.",
					w.Reference.Cyclical, w.Reference.Defensive)
			},
		},
		{
			ID:        "defensive_leadership",
			Group:     GroupLeadership,
			Severity:  models.SeverityWarning,
			Exclusive: "leadership",
			Requires:  []string{cycVsMA, defVsMA},
			When: func(ctx *Context) bool {
				return ctx.Sig(defVsMA).Above() && !ctx.Sig(cycVsMA).Above()
			},
			Message: func(ctx *Context) string {
				return fmt.Sprintf("Defensive sectors (%s) are outperforming cyclicals (%s), indicating a shift to risk-off positioning.",
					w.Reference.Defensive, w.Reference.Cyclical)
			},
		},
		// Flight to quality: both legs must hold with defined values.
		{
			ID:       "safe_haven_rotation",
			Group:    GroupSafeHaven,
			Severity: models.SeverityWarning,
			Requires: []string{bondVsMA, benchVsMA},
			When: func(ctx *Context) bool {
				return ctx.Sig(bondVsMA).Above() && !ctx.Sig(benchVsMA).Above()
			},
			Message: func(ctx *Context) string {
				return fmt.Sprintf("Treasury bonds (%s) are in an uptrend while equities are weak, a possible flight to safety into bonds.",
					w.Reference.Bond)
			},
		},
		// Portfolio rules: pure threshold checks, once per position.
		{
			ID:          "position_target_reached",
			Group:       GroupPortfolio,
			Severity:    models.SeveritySuccess,
			PerPosition: true,
			PositionRequires: func(pos *models.PortfolioPosition) []string {
				return []string{signal.PriceName(pos.Symbol)}
			},
			When: func(ctx *Context) bool {
				pos := ctx.Position
				return pos.TargetPrice > 0 && ctx.Sig(signal.PriceName(pos.Symbol)).Value >= pos.TargetPrice
			},
			Message: func(ctx *Context) string {
				pos := ctx.Position
				return fmt.Sprintf("%s reached its %.2f target price (last %.2f). Consider taking profits.",
					pos.Symbol, pos.TargetPrice, ctx.Sig(signal.PriceName(pos.Symbol)).Value)
			},
		},
		{
			ID:          "position_stop_loss_breached",
			Group:       GroupPortfolio,
			Severity:    models.SeverityCritical,
			PerPosition: true,
			PositionRequires: func(pos *models.PortfolioPosition) []string {
				return []string{signal.PriceName(pos.Symbol)}
			},
			When: func(ctx *Context) bool {
				// Touching the stop counts as breached.
				pos := ctx.Position
				return pos.StopLoss > 0 && ctx.Sig(signal.PriceName(pos.Symbol)).Value <= pos.StopLoss
			},
			Message: func(ctx *Context) string {
				pos := ctx.Position
				return fmt.Sprintf("%s breached its %.2f stop-loss (last %.2f). Review the position immediately.",
					pos.Symbol, pos.StopLoss, ctx.Sig(signal.PriceName(pos.Symbol)).Value)
			},
		},
		{
			ID:          "position_outsized_move",
			Group:       GroupPortfolio,
			Severity:    models.SeverityWarning,
			PerPosition: true,
			PositionRequires: func(pos *models.PortfolioPosition) []string {
				return []string{signal.DayChangeName(pos.Symbol)}
			},
			When: func(ctx *Context) bool {
				change := ctx.Sig(signal.DayChangeName(ctx.Position.Symbol)).Value
				return math.Abs(change) >= t.BigMovePct
			},
			Message: func(ctx *Context) string {
				pos := ctx.Position
				return fmt.Sprintf("%s moved %+.1f%% in a single session, beyond the %.1f%% threshold.",
					pos.Symbol, ctx.Sig(signal.DayChangeName(pos.Symbol)).Value, t.BigMovePct)
			},
		},
	}
}
