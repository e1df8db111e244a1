package models

import (
	"time"
)

// Severity is the static urgency class of an alert. It is assigned at rule
// definition time, never inferred from the rendered message text.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeveritySuccess  Severity = "success"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities from least (info) to most (critical) urgent
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 0
	case SeveritySuccess:
		return 1
	case SeverityWarning:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// AtLeast reports whether s is at least as urgent as other
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// Valid reports whether s is a known severity class
func (s Severity) Valid() bool {
	return s.Rank() >= 0
}

// Alert is one generated alert record. Immutable once created.
type Alert struct {
	ID        string    `json:"id"`
	RuleID    string    `json:"rule_id"`
	Symbol    string    `json:"symbol,omitempty"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate validates an Alert
func (a *Alert) Validate() error {
	if a.ID == "" {
		return ErrInvalidAlertID
	}
	if a.RuleID == "" {
		return ErrInvalidRuleID
	}
	if !a.Severity.Valid() {
		return ErrInvalidSeverity
	}
	if a.Message == "" {
		return ErrEmptyMessage
	}
	if a.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	return nil
}
