package models

import (
	"time"
)

// Bar is one OHLCV observation for an instrument. The reference deployment
// records daily bars but nothing in the engine assumes a fixed granularity.
type Bar struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	InstrumentID string    `gorm:"index;uniqueIndex:idx_bars_instrument_ts;not null" json:"instrument_id"`
	Timestamp    time.Time `gorm:"uniqueIndex:idx_bars_instrument_ts;not null" json:"timestamp"`
	Open         float64   `gorm:"type:decimal(20,8)" json:"open"`
	High         float64   `gorm:"type:decimal(20,8)" json:"high"`
	Low          float64   `gorm:"type:decimal(20,8)" json:"low"`
	Close        float64   `gorm:"type:decimal(20,8)" json:"close"`
	Volume       int64     `json:"volume"`
}

// TableName sets the table name for the Bar model
func (Bar) TableName() string {
	return "bars"
}
