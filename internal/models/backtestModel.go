package models

import (
	"time"
)

// BacktestSummary aggregates one replay run over a historical bar range.
// Returns are simple per-trade percentages and TotalReturn is their sum,
// not a compounded figure. AvgStrength is the mean scorer strength across
// the non-HOLD decisions in the range. Rows are replaced wholesale per
// (instrument, range label, rule version), never partially updated.
type BacktestSummary struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	InstrumentID   string    `gorm:"index;uniqueIndex:idx_backtests_key;not null" json:"instrument_id"`
	RangeLabel     string    `gorm:"uniqueIndex:idx_backtests_key;not null" json:"range_label"`
	RuleVersion    string    `gorm:"uniqueIndex:idx_backtests_key;not null" json:"rule_version"`
	StartTimestamp time.Time `json:"start_timestamp"`
	EndTimestamp   time.Time `json:"end_timestamp"`
	Trades         int       `json:"trades"`
	WinRate        float64   `json:"win_rate"`
	AvgReturn      float64   `json:"avg_return"`
	TotalReturn    float64   `json:"total_return"`
	AvgStrength    float64   `json:"avg_strength"`
	GeneratedAt    time.Time `gorm:"autoUpdateTime" json:"generated_at"`
}

// TableName sets the table name for the BacktestSummary model
func (BacktestSummary) TableName() string {
	return "backtests"
}
