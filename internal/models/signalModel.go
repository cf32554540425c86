package models

import (
	"time"
)

const (
	SignalTypeBuy  = "BUY"
	SignalTypeSell = "SELL"
	SignalTypeHold = "HOLD"
)

// Signal is one stored trading recommendation. At most one row exists per
// idempotency key; re-evaluating the same (instrument, timestamp, rule version)
// overwrites the mutable fields in place instead of inserting a duplicate.
type Signal struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	InstrumentID   string    `gorm:"index;not null" json:"instrument_id"`
	Timestamp      time.Time `gorm:"index;not null" json:"timestamp"`
	SignalType     string    `gorm:"not null" json:"signal_type"`
	Strength       int       `gorm:"not null" json:"strength"`
	Reasoning      []string  `gorm:"serializer:json;type:text" json:"reasoning"`
	PriceAtSignal  float64   `gorm:"type:decimal(20,8)" json:"price_at_signal"`
	RuleVersion    string    `gorm:"index;not null" json:"rule_version"`
	IdempotencyKey string    `gorm:"uniqueIndex;not null" json:"idempotency_key"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName sets the table name for the Signal model
func (Signal) TableName() string {
	return "signals"
}

// IdempotencyKey builds the deterministic key that collapses duplicate writes
// for the same (instrument, rule version, bar timestamp).
func IdempotencyKey(instrumentID, ruleVersion string, ts time.Time) string {
	return instrumentID + ":" + ruleVersion + ":" + ts.UTC().Format(time.RFC3339)
}
