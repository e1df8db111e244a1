package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mohamedkhairy/market-pulse/internal/models"
)

// Watchlist is the analysis configuration document: tracked instruments,
// derivation windows, alert thresholds, and optional portfolio positions.
// The core consumes it read-only; ownership stays with the operator.
type Watchlist struct {
	Instruments []models.Instrument        `yaml:"instruments"`
	Reference   Reference                  `yaml:"reference"`
	Signals     SignalConfig               `yaml:"signals"`
	Thresholds  Thresholds                 `yaml:"thresholds"`
	Portfolio   []models.PortfolioPosition `yaml:"portfolio"`

	AlertLogCapacity int `yaml:"alert_log_capacity"`
}

// Reference names the special-purpose symbols the rule set keys off.
// Every referenced symbol must appear in the instrument list.
type Reference struct {
	Benchmark  string `yaml:"benchmark"`  // broad market proxy, e.g. SPY
	Volatility string `yaml:"volatility"` // e.g. ^VIX
	Yield      string `yaml:"yield"`      // e.g. ^TNX
	Bond       string `yaml:"bond"`       // safe-haven leg, e.g. TLT
	Cyclical   string `yaml:"cyclical"`   // e.g. XLY
	Defensive  string `yaml:"defensive"`  // e.g. XLP
}

// SignalConfig holds derivation windows and lookbacks
type SignalConfig struct {
	MAWindow       int `yaml:"ma_window"`
	ReturnLookback int `yaml:"return_lookback"`
	RSIPeriod      int `yaml:"rsi_period"`
}

// Thresholds holds the rule constants
type Thresholds struct {
	VIXElevated       float64 `yaml:"vix_elevated"`
	VIXVeryHigh       float64 `yaml:"vix_very_high"`
	YieldHigh         float64 `yaml:"yield_high"`
	BreadthWeak       int     `yaml:"breadth_weak"`   // fires when count <= this
	BreadthStrong     int     `yaml:"breadth_strong"` // fires when count >= this
	BigMovePct        float64 `yaml:"big_move_pct"`
	RSIOverbought     float64 `yaml:"rsi_overbought"`
	RSIOversold       float64 `yaml:"rsi_oversold"`
	MaxNoDataFraction float64 `yaml:"max_no_data_fraction"`
}

// LoadWatchlist reads and validates a watchlist YAML document
func LoadWatchlist(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}

	var w Watchlist
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse watchlist: %w", err)
	}

	w.applyDefaults()
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("watchlist validation failed: %w", err)
	}

	return &w, nil
}

func (w *Watchlist) applyDefaults() {
	if w.Signals.MAWindow == 0 {
		w.Signals.MAWindow = 200
	}
	if w.Signals.ReturnLookback == 0 {
		w.Signals.ReturnLookback = 63 // ~3 months of trading days
	}
	if w.Signals.RSIPeriod == 0 {
		w.Signals.RSIPeriod = 14
	}
	if w.Thresholds.VIXElevated == 0 {
		w.Thresholds.VIXElevated = 20
	}
	if w.Thresholds.VIXVeryHigh == 0 {
		w.Thresholds.VIXVeryHigh = 30
	}
	if w.Thresholds.YieldHigh == 0 {
		w.Thresholds.YieldHigh = 4.0
	}
	if w.Thresholds.BreadthWeak == 0 {
		w.Thresholds.BreadthWeak = 3
	}
	if w.Thresholds.BreadthStrong == 0 {
		w.Thresholds.BreadthStrong = 8
	}
	if w.Thresholds.BigMovePct == 0 {
		w.Thresholds.BigMovePct = 5.0
	}
	if w.Thresholds.RSIOverbought == 0 {
		w.Thresholds.RSIOverbought = 70
	}
	if w.Thresholds.RSIOversold == 0 {
		w.Thresholds.RSIOversold = 30
	}
	if w.Thresholds.MaxNoDataFraction == 0 {
		w.Thresholds.MaxNoDataFraction = 0.5
	}
	if w.AlertLogCapacity == 0 {
		w.AlertLogCapacity = 50
	}
}

// Validate validates the watchlist document
func (w *Watchlist) Validate() error {
	if len(w.Instruments) == 0 {
		return fmt.Errorf("watchlist must contain at least one instrument")
	}

	seen := make(map[string]bool, len(w.Instruments))
	for i := range w.Instruments {
		inst := &w.Instruments[i]
		if err := inst.Validate(); err != nil {
			return fmt.Errorf("instrument %q: %w", inst.Symbol, err)
		}
		if seen[inst.Symbol] {
			return fmt.Errorf("duplicate instrument %q", inst.Symbol)
		}
		seen[inst.Symbol] = true
	}

	refs := map[string]string{
		"benchmark":  w.Reference.Benchmark,
		"volatility": w.Reference.Volatility,
		"yield":      w.Reference.Yield,
		"bond":       w.Reference.Bond,
		"cyclical":   w.Reference.Cyclical,
		"defensive":  w.Reference.Defensive,
	}
	for role, sym := range refs {
		if sym == "" {
			return fmt.Errorf("reference.%s is required", role)
		}
		if !seen[sym] {
			return fmt.Errorf("reference.%s %q: %w", role, sym, models.ErrUnknownInstrument)
		}
	}

	for i := range w.Portfolio {
		pos := &w.Portfolio[i]
		if err := pos.Validate(); err != nil {
			return fmt.Errorf("portfolio position %q: %w", pos.Symbol, err)
		}
		if !seen[pos.Symbol] {
			return fmt.Errorf("portfolio position %q: %w", pos.Symbol, models.ErrUnknownInstrument)
		}
	}

	if w.Thresholds.BreadthWeak >= w.Thresholds.BreadthStrong {
		return fmt.Errorf("breadth_weak (%d) must be below breadth_strong (%d)",
			w.Thresholds.BreadthWeak, w.Thresholds.BreadthStrong)
	}
	if w.Thresholds.VIXElevated >= w.Thresholds.VIXVeryHigh {
		return fmt.Errorf("vix_elevated (%.1f) must be below vix_very_high (%.1f)",
			w.Thresholds.VIXElevated, w.Thresholds.VIXVeryHigh)
	}
	if w.Thresholds.MaxNoDataFraction < 0 || w.Thresholds.MaxNoDataFraction > 1 {
		return fmt.Errorf("max_no_data_fraction must be in [0,1]")
	}
	if w.AlertLogCapacity < 1 {
		return fmt.Errorf("alert_log_capacity must be at least 1")
	}

	return nil
}

// Symbols returns every tracked symbol
func (w *Watchlist) Symbols() []string {
	out := make([]string, 0, len(w.Instruments))
	for i := range w.Instruments {
		out = append(out, w.Instruments[i].Symbol)
	}
	return out
}

// Sectors returns the sector ETF symbols, in configured order
func (w *Watchlist) Sectors() []string {
	var out []string
	for i := range w.Instruments {
		if w.Instruments[i].Role == models.RoleSectorETF {
			out = append(out, w.Instruments[i].Symbol)
		}
	}
	return out
}

// Instrument returns the instrument for a symbol
func (w *Watchlist) Instrument(symbol string) (models.Instrument, bool) {
	for i := range w.Instruments {
		if w.Instruments[i].Symbol == symbol {
			return w.Instruments[i], true
		}
	}
	return models.Instrument{}, false
}

// MinHistory returns the minimum number of periods the fetch collaborator
// must supply so every derived series has at least one defined point.
func (w *Watchlist) MinHistory() int {
	min := w.Signals.MAWindow
	if l := w.Signals.ReturnLookback + 1; l > min {
		min = l
	}
	if p := w.Signals.RSIPeriod + 1; p > min {
		min = p
	}
	return min
}

// DefaultWatchlist returns the stock configuration the dashboards shipped
// with: SPY benchmark, eleven SPDR sectors, VIX/TNX indicators, TLT and GLD.
func DefaultWatchlist() *Watchlist {
	w := &Watchlist{
		Instruments: []models.Instrument{
			{Symbol: "AAPL", Role: models.RoleStock},
			{Symbol: "MSFT", Role: models.RoleStock},
			{Symbol: "SPY", Role: models.RoleEquityIndexETF},
			{Symbol: "QQQ", Role: models.RoleEquityIndexETF},
			{Symbol: "IWM", Role: models.RoleEquityIndexETF},
			{Symbol: "EEM", Role: models.RoleEquityIndexETF},
			{Symbol: "XLE", Role: models.RoleSectorETF},
			{Symbol: "XLB", Role: models.RoleSectorETF},
			{Symbol: "XLI", Role: models.RoleSectorETF},
			{Symbol: "XLY", Role: models.RoleSectorETF},
			{Symbol: "XLV", Role: models.RoleSectorETF},
			{Symbol: "XLF", Role: models.RoleSectorETF},
			{Symbol: "XLK", Role: models.RoleSectorETF},
			{Symbol: "XLC", Role: models.RoleSectorETF},
			{Symbol: "XLRE", Role: models.RoleSectorETF},
			{Symbol: "XLU", Role: models.RoleSectorETF},
			{Symbol: "XLP", Role: models.RoleSectorETF},
			{Symbol: "TLT", Role: models.RoleBondETF},
			{Symbol: "GLD", Role: models.RoleCommodityETF},
			{Symbol: "^VIX", Role: models.RoleMarketIndicator},
			{Symbol: "^TNX", Role: models.RoleMarketIndicator, Scale: 0.1},
		},
		Reference: Reference{
			Benchmark:  "SPY",
			Volatility: "^VIX",
			Yield:      "^TNX",
			Bond:       "TLT",
			Cyclical:   "XLY",
			Defensive:  "XLP",
		},
	}
	w.applyDefaults()
	return w
}
