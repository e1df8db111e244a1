package signal

import (
	"github.com/mohamedkhairy/market-pulse/internal/config"
	"github.com/mohamedkhairy/market-pulse/internal/series"
)

// Evaluator maps series store state to the cycle's signal set. Evaluation
// is pure and order-independent: every signal depends only on store state,
// never on another signal, so identical input yields an identical set.
type Evaluator struct {
	watch *config.Watchlist
}

// NewEvaluator creates an evaluator for a validated watchlist
func NewEvaluator(watch *config.Watchlist) *Evaluator {
	return &Evaluator{watch: watch}
}

// EdgeSignals returns the signal names whose state transitions drive
// edge-triggered rules. Only these are retained in the one-cycle snapshot.
func (e *Evaluator) EdgeSignals() []string {
	return []string{VsMAName(e.watch.Reference.Benchmark, e.watch.Signals.MAWindow)}
}

// Evaluate computes the full signal set from current store state
func (e *Evaluator) Evaluate(store *series.Store) Set {
	w := e.watch
	set := make(Set, 4*len(w.Instruments)+4)

	for i := range w.Instruments {
		inst := &w.Instruments[i]
		scale := inst.EffectiveScale()

		set.add(e.priceSignal(store, inst.Symbol, scale))
		set.add(e.vsMASignal(store, inst.Symbol, w.Signals.MAWindow))
		set.add(e.dayChangeSignal(store, inst.Symbol))
	}

	set.add(e.breadthSignal(store))
	set.add(e.returnSignal(store, w.Reference.Cyclical))
	set.add(e.returnSignal(store, w.Reference.Defensive))
	set.add(e.leadershipSignal(store))
	set.add(e.rsiSignal(store, w.Reference.Benchmark))

	return set
}

func (s Set) add(sig Signal) {
	s[sig.Name] = sig
}

func noData(name string) Signal {
	return Signal{Name: name, State: StateNoData}
}

// priceSignal carries the latest price, scaled into display units
func (e *Evaluator) priceSignal(store *series.Store, symbol string, scale float64) Signal {
	name := PriceName(symbol)
	price, ok := store.Latest(symbol).Float()
	if !ok {
		return noData(name)
	}
	return Signal{Name: name, State: StateOK, Value: price * scale}
}

// vsMASignal compares the latest price against its rolling mean.
// Value is the signed percent distance, Aux the MA level. Either side
// undefined makes the whole signal no-data.
func (e *Evaluator) vsMASignal(store *series.Store, symbol string, window int) Signal {
	name := VsMAName(symbol, window)

	price, ok := store.Latest(symbol).Float()
	if !ok {
		return noData(name)
	}
	ma, ok := store.RollingMean(symbol, window).Latest().Float()
	if !ok || ma == 0 {
		return noData(name)
	}

	state := StateBelow
	if price >= ma {
		state = StateAbove
	}
	return Signal{
		Name:  name,
		State: state,
		Value: (price - ma) / ma * 100,
		Aux:   ma,
	}
}

// dayChangeSignal is the one-period percent move of the latest price
func (e *Evaluator) dayChangeSignal(store *series.Store, symbol string) Signal {
	name := DayChangeName(symbol)

	s, ok := store.Get(symbol)
	if !ok {
		return noData(name)
	}
	latest, ok := s.Latest().Float()
	if !ok {
		return noData(name)
	}
	prev, ok := s.Prev().Float()
	if !ok || prev == 0 {
		return noData(name)
	}

	return Signal{Name: name, State: StateOK, Value: (latest - prev) / prev * 100}
}

// breadthSignal counts sector members trading above their moving average.
// Members without enough history are excluded from both the count and the
// reported set size; the signal is no-data only when no member has data.
func (e *Evaluator) breadthSignal(store *series.Store) Signal {
	w := e.watch
	above, withData := 0, 0
	for _, sym := range w.Sectors() {
		sig := e.vsMASignal(store, sym, w.Signals.MAWindow)
		if !sig.HasData() {
			continue
		}
		withData++
		if sig.Above() {
			above++
		}
	}

	if withData == 0 {
		return noData(BreadthName)
	}
	return Signal{Name: BreadthName, State: StateOK, Value: float64(above), Aux: float64(withData)}
}

// returnSignal is the fixed-lookback rolling return, in percent
func (e *Evaluator) returnSignal(store *series.Store, symbol string) Signal {
	name := ReturnName(symbol)
	ret, ok := store.RollingReturn(symbol, e.watch.Signals.ReturnLookback).Latest().Float()
	if !ok {
		return noData(name)
	}
	return Signal{Name: name, State: StateOK, Value: ret * 100}
}

// leadershipSignal compares cyclical vs defensive lookback returns.
// Above means cyclicals lead. Value is the spread in percentage points.
func (e *Evaluator) leadershipSignal(store *series.Store) Signal {
	w := e.watch
	lookback := w.Signals.ReturnLookback

	cyc, ok := store.RollingReturn(w.Reference.Cyclical, lookback).Latest().Float()
	if !ok {
		return noData(LeadershipName)
	}
	def, ok := store.RollingReturn(w.Reference.Defensive, lookback).Latest().Float()
	if !ok {
		return noData(LeadershipName)
	}

	state := StateBelow
	if cyc >= def {
		state = StateAbove
	}
	return Signal{Name: LeadershipName, State: state, Value: (cyc - def) * 100}
}

// rsiSignal is the benchmark RSI momentum value
func (e *Evaluator) rsiSignal(store *series.Store, symbol string) Signal {
	name := RSIName(symbol)
	s, ok := store.Get(symbol)
	if !ok {
		return noData(name)
	}
	v, defined := series.RSI(s, e.watch.Signals.RSIPeriod).Float()
	if !defined {
		return noData(name)
	}
	return Signal{Name: name, State: StateOK, Value: v}
}
