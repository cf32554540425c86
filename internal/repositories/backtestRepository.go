package repositories

import (
	"errors"

	"gorm.io/gorm"

	"MarketSignals/internal/models"
)

type BacktestRepository struct {
	db *gorm.DB
}

// NewBacktestRepository creates a new instance of BacktestRepository
func NewBacktestRepository(db *gorm.DB) *BacktestRepository {
	return &BacktestRepository{db: db}
}

// Replace stores a backtest summary wholesale for its (instrument, range
// label, rule version) key. Any previous row for the key is removed first;
// summaries are never partially updated.
func (r *BacktestRepository) Replace(summary *models.BacktestSummary) error {
	if summary == nil {
		return errors.New("summary cannot be nil")
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("instrument_id = ? AND range_label = ? AND rule_version = ?",
			summary.InstrumentID, summary.RangeLabel, summary.RuleVersion).
			Delete(&models.BacktestSummary{}).Error
		if err != nil {
			return err
		}
		return tx.Create(summary).Error
	})
	if err != nil {
		return &models.PersistenceError{Op: "replace backtest summary", Key: summary.InstrumentID + ":" + summary.RangeLabel, Err: err}
	}
	return nil
}

// ListByInstrument returns all stored summaries for an instrument.
func (r *BacktestRepository) ListByInstrument(instrumentID string) ([]models.BacktestSummary, error) {
	if instrumentID == "" {
		return nil, errors.New("instrument id cannot be empty")
	}
	var summaries []models.BacktestSummary
	err := r.db.Where("instrument_id = ?", instrumentID).
		Order("generated_at DESC").
		Find(&summaries).Error
	if err != nil {
		return nil, &models.PersistenceError{Op: "list backtest summaries", Key: instrumentID, Err: err}
	}
	return summaries, nil
}
