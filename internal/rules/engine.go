package rules

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mohamedkhairy/market-pulse/internal/models"
	"github.com/mohamedkhairy/market-pulse/internal/signal"
	"github.com/mohamedkhairy/market-pulse/pkg/logger"
)

// DiagnosticRuleID identifies the insufficient-data diagnostic alert
const DiagnosticRuleID = "insufficient_data"

// Engine evaluates a fixed, ordered rule set against a cycle's signals.
// The engine itself is stateless; the one cycle of memory edge rules need
// is passed in explicitly as a Snapshot.
type Engine struct {
	rules             []Rule
	maxNoDataFraction float64
	now               func() time.Time
}

// NewEngine creates an engine over the given rule set. Rules are ordered
// by group, insertion order within a group. maxNoDataFraction caps the
// share of required signals that may be no-data before the cycle degrades
// to a single diagnostic alert.
func NewEngine(ruleset []Rule, maxNoDataFraction float64) *Engine {
	ordered := make([]Rule, len(ruleset))
	copy(ordered, ruleset)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Group < ordered[j].Group
	})

	return &Engine{
		rules:             ordered,
		maxNoDataFraction: maxNoDataFraction,
		now:               time.Now,
	}
}

// Evaluate runs every rule in priority order and returns the cycle's
// ordered alert list.
//
// A rule whose required signal name was never produced fails the whole
// call: that is a configuration mistake the operator must fix, not a data
// gap to skip over. Rules whose required signals are present but no-data
// are skipped silently. If too many required signals are no-data, a single
// diagnostic alert is returned instead of any rule output.
func (e *Engine) Evaluate(signals signal.Set, prev Snapshot, positions []models.PortfolioPosition) ([]models.Alert, error) {
	required, err := e.requiredSignals(signals, positions)
	if err != nil {
		return nil, err
	}

	if missing, total := countMissing(signals, required); total > 0 {
		fraction := float64(missing) / float64(total)
		if fraction > e.maxNoDataFraction {
			logger.Warn("Too many signals without data, degrading to diagnostic alert",
				logger.Int("missing", missing),
				logger.Int("required", total),
			)
			return []models.Alert{e.newAlert(DiagnosticRuleID, "", models.SeverityInfo,
				fmt.Sprintf("Insufficient data for full analysis: %d of %d required signals have no data.", missing, total),
			)}, nil
		}
	}

	var alerts []models.Alert
	fired := make(map[string]bool)

	for i := range e.rules {
		rule := &e.rules[i]

		if rule.PerPosition {
			for p := range positions {
				pos := &positions[p]
				if alert, ok := e.evalForPosition(rule, signals, prev, pos); ok {
					alerts = append(alerts, alert)
				}
			}
			continue
		}

		if rule.Exclusive != "" && fired[rule.Exclusive] {
			continue
		}
		if !allHaveData(signals, rule.Requires) {
			logger.Debug("Skipping rule with no-data inputs", logger.String("rule_id", rule.ID))
			continue
		}

		ctx := &Context{Signals: signals, Prev: prev}
		if !rule.When(ctx) {
			continue
		}

		alerts = append(alerts, e.newAlert(rule.ID, "", rule.Severity, rule.Message(ctx)))
		if rule.Exclusive != "" {
			fired[rule.Exclusive] = true
		}
	}

	return alerts, nil
}

// requiredSignals collects the union of signal names the rule set reads,
// verifying each one exists in the evaluated set.
func (e *Engine) requiredSignals(signals signal.Set, positions []models.PortfolioPosition) (map[string]bool, error) {
	required := make(map[string]bool)

	for i := range e.rules {
		rule := &e.rules[i]

		names := rule.Requires
		if rule.PerPosition {
			names = nil
			for p := range positions {
				names = append(names, rule.PositionRequires(&positions[p])...)
			}
		}

		for _, name := range names {
			if _, ok := signals.Get(name); !ok {
				return nil, fmt.Errorf("rule %s: %w: %s", rule.ID, models.ErrUnknownSignal, name)
			}
			required[name] = true
		}
	}

	return required, nil
}

func (e *Engine) evalForPosition(rule *Rule, signals signal.Set, prev Snapshot, pos *models.PortfolioPosition) (models.Alert, bool) {
	if !allHaveData(signals, rule.PositionRequires(pos)) {
		logger.Debug("Skipping portfolio rule with no-data inputs",
			logger.String("rule_id", rule.ID),
			logger.String("symbol", pos.Symbol),
		)
		return models.Alert{}, false
	}

	ctx := &Context{Signals: signals, Prev: prev, Position: pos}
	if !rule.When(ctx) {
		return models.Alert{}, false
	}
	return e.newAlert(rule.ID, pos.Symbol, rule.Severity, rule.Message(ctx)), true
}

func (e *Engine) newAlert(ruleID, symbol string, severity models.Severity, message string) models.Alert {
	return models.Alert{
		ID:        uuid.New().String(),
		RuleID:    ruleID,
		Symbol:    symbol,
		Severity:  severity,
		Message:   message,
		Timestamp: e.now(),
	}
}

func allHaveData(signals signal.Set, names []string) bool {
	for _, name := range names {
		sig, ok := signals.Get(name)
		if !ok || !sig.HasData() {
			return false
		}
	}
	return true
}

func countMissing(signals signal.Set, required map[string]bool) (missing, total int) {
	for name := range required {
		total++
		if sig, ok := signals.Get(name); !ok || !sig.HasData() {
			missing++
		}
	}
	return missing, total
}
