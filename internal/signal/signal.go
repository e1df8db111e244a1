package signal

import (
	"fmt"
	"sort"
	"strings"
)

// State classifies a signal's current value
type State string

const (
	// StateAbove / StateBelow are the outcomes of a comparison signal
	StateAbove State = "above"
	StateBelow State = "below"
	// StateOK marks a plain numeric signal with a defined value
	StateOK State = "ok"
	// StateNoData marks a signal whose inputs lack sufficient history.
	// Consumers must skip such signals, never treat them as zero or false.
	StateNoData State = "no_data"
)

// Signal is one named fact derived from current series state. Signals are
// recomputed fresh every cycle and hold no persistent identity.
type Signal struct {
	Name  string  `json:"name"`
	State State   `json:"state"`
	Value float64 `json:"value"` // primary numeric payload; meaningless when no-data
	Aux   float64 `json:"aux"`   // secondary payload (MA level, set size)
}

// HasData reports whether the signal carries a defined value
func (s Signal) HasData() bool {
	return s.State != StateNoData
}

// Above reports whether a comparison signal resolved above
func (s Signal) Above() bool {
	return s.State == StateAbove
}

// Set is the full signal mapping for one evaluation cycle
type Set map[string]Signal

// Get returns the named signal and whether it exists in the set
func (s Set) Get(name string) (Signal, bool) {
	sig, ok := s[name]
	return sig, ok
}

// Names returns the signal names in sorted order
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NoDataCount returns how many signals in the set lack data
func (s Set) NoDataCount() int {
	n := 0
	for _, sig := range s {
		if !sig.HasData() {
			n++
		}
	}
	return n
}

// slug normalizes a ticker symbol into a signal name component:
// "^VIX" becomes "vix", "BRK.B" becomes "brk_b".
func slug(symbol string) string {
	s := strings.ToLower(strings.TrimPrefix(symbol, "^"))
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, s)
	return s
}

// PriceName is the latest (scaled) price signal for a symbol
func PriceName(symbol string) string {
	return slug(symbol) + "_price"
}

// VsMAName is the price-vs-moving-average signal for a symbol and window
func VsMAName(symbol string, window int) string {
	return fmt.Sprintf("%s_vs_ma%d", slug(symbol), window)
}

// DayChangeName is the one-period percent move signal for a symbol
func DayChangeName(symbol string) string {
	return slug(symbol) + "_day_change"
}

// ReturnName is the fixed-lookback rolling return signal for a symbol
func ReturnName(symbol string) string {
	return slug(symbol) + "_return"
}

// RSIName is the RSI momentum signal for a symbol
func RSIName(symbol string) string {
	return slug(symbol) + "_rsi"
}

// BreadthName is the sector breadth count signal
const BreadthName = "sector_breadth"

// LeadershipName is the cyclical-vs-defensive relative strength signal
const LeadershipName = "cyclical_vs_defensive"
