package rules

import (
	"github.com/mohamedkhairy/market-pulse/internal/models"
	"github.com/mohamedkhairy/market-pulse/internal/signal"
)

// Group fixes the evaluation priority order of the rule set. Rules run
// group by group, insertion order within a group; this is deliberate
// because several rules are mutually exclusive and the first match in an
// exclusion key must win.
type Group int

const (
	GroupTrendReversal Group = iota + 1
	GroupTrendSteady
	GroupVolatility
	GroupMacro
	GroupMomentum
	GroupBreadth
	GroupLeadership
	GroupSafeHaven
	GroupPortfolio
)

// Rule is one alert rule: a precondition over signals, a message template,
// and a statically assigned severity class. Severity is a property of the
// rule definition, never inferred from the rendered message.
type Rule struct {
	ID       string
	Group    Group
	Severity models.Severity

	// Exclusive is an optional preemption key. Among rules sharing a key,
	// only the first one to fire in a cycle emits an alert.
	Exclusive string

	// Requires lists the signal names the precondition reads. A name the
	// evaluator never produced is a configuration error and fails the
	// cycle; a produced-but-no-data name skips the rule.
	Requires []string

	// PerPosition marks portfolio rules, evaluated once per configured
	// position with Context.Position set. PositionRequires supplies the
	// per-symbol signal names.
	PerPosition      bool
	PositionRequires func(pos *models.PortfolioPosition) []string

	When    func(ctx *Context) bool
	Message func(ctx *Context) string
}

// Context is the read-only evaluation context handed to rule predicates
// and message templates.
type Context struct {
	Signals  signal.Set
	Prev     Snapshot
	Position *models.PortfolioPosition
}

// Sig returns the named signal, or a no-data placeholder if absent.
// The engine validates presence before predicates run, so predicates can
// read freely.
func (c *Context) Sig(name string) signal.Signal {
	if sig, ok := c.Signals.Get(name); ok {
		return sig
	}
	return signal.Signal{Name: name, State: signal.StateNoData}
}

// PrevState returns the prior cycle's state for an edge-flagged signal
func (c *Context) PrevState(name string) (signal.State, bool) {
	state, ok := c.Prev[name]
	return state, ok
}

// Snapshot is the one-cycle memory for edge-triggered rules: the previous
// cycle's state of the signals flagged as edge-triggered, and nothing else.
type Snapshot map[string]signal.State

// SnapshotFrom captures the current state of the named signals. Signals in
// a no-data state are omitted, so the next cycle cannot edge-trigger off a
// gap.
func SnapshotFrom(set signal.Set, names []string) Snapshot {
	snap := make(Snapshot, len(names))
	for _, name := range names {
		if sig, ok := set.Get(name); ok && sig.HasData() {
			snap[name] = sig.State
		}
	}
	return snap
}
