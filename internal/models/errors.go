package models

import (
	"fmt"
	"time"
)

// DataOrderError reports input bars that are not strictly increasing in
// timestamp. The engine never repairs or reorders input.
type DataOrderError struct {
	InstrumentID string
	Timestamp    time.Time
	Previous     time.Time
}

func (e *DataOrderError) Error() string {
	return fmt.Sprintf("bars out of order for %s: timestamp %s is not after %s",
		e.InstrumentID,
		e.Timestamp.UTC().Format(time.RFC3339),
		e.Previous.UTC().Format(time.RFC3339))
}

// StrategyEvaluationError wraps a strategy failure with enough context to
// diagnose it without re-deriving engine state.
type StrategyEvaluationError struct {
	InstrumentID string
	Timestamp    time.Time
	RuleVersion  string
	Err          error
}

func (e *StrategyEvaluationError) Error() string {
	return fmt.Sprintf("strategy %s failed for %s at %s: %v",
		e.RuleVersion,
		e.InstrumentID,
		e.Timestamp.UTC().Format(time.RFC3339),
		e.Err)
}

func (e *StrategyEvaluationError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a signal store failure outside engine control.
// Retry policy belongs to the orchestrator, not the engine.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persistence failure during %s for %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
