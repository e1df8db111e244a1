package models

import "errors"

var (
	ErrInvalidSymbol    = errors.New("invalid symbol")
	ErrInvalidRole      = errors.New("invalid instrument role")
	ErrInvalidScale     = errors.New("invalid price scale")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidShares    = errors.New("invalid share count")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidAlertID   = errors.New("invalid alert ID")
	ErrInvalidRuleID    = errors.New("invalid rule ID")
	ErrInvalidSeverity  = errors.New("invalid severity class")
	ErrEmptyMessage     = errors.New("alert message cannot be empty")

	// ErrEmptySeries is returned when ingest drops every supplied point
	ErrEmptySeries = errors.New("no valid points in series")
	// ErrInvalidWindow is returned for non-positive windows or lookbacks
	ErrInvalidWindow = errors.New("window must be at least 1")
	// ErrUnknownSignal is returned when a rule references a signal name
	// that the evaluator never produced. This is a configuration mistake
	// and fails the whole evaluation cycle.
	ErrUnknownSignal = errors.New("rule references unknown signal")
	// ErrUnknownInstrument is returned when configuration references a
	// symbol absent from the instrument list
	ErrUnknownInstrument = errors.New("configuration references unknown instrument")
)
