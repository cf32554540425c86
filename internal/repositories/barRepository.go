package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"MarketSignals/internal/models"
)

type BarRepository struct {
	db *gorm.DB
}

// NewBarRepository creates a new instance of BarRepository
func NewBarRepository(db *gorm.DB) *BarRepository {
	return &BarRepository{db: db}
}

// SaveBatch inserts bars, silently skipping rows that already exist for the
// same (instrument, timestamp). Re-fetching overlapping ranges is routine and
// must not fail or duplicate.
func (r *BarRepository) SaveBatch(bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "instrument_id"}, {Name: "timestamp"}},
		DoNothing: true,
	}).Create(&bars).Error
	if err != nil {
		return &models.PersistenceError{Op: "save bars", Err: err}
	}
	return nil
}

// GetRange returns bars for an instrument within [start, end], ascending by
// timestamp. The engine relies on this ordering and rejects anything else.
func (r *BarRepository) GetRange(instrumentID string, start, end time.Time) ([]models.Bar, error) {
	if instrumentID == "" {
		return nil, errors.New("instrument id cannot be empty")
	}
	var bars []models.Bar
	err := r.db.Where("instrument_id = ? AND timestamp BETWEEN ? AND ?", instrumentID, start, end).
		Order("timestamp ASC").
		Find(&bars).Error
	if err != nil {
		return nil, &models.PersistenceError{Op: "load bars", Key: instrumentID, Err: err}
	}
	return bars, nil
}

// GetAll returns the full bar history for an instrument, ascending.
func (r *BarRepository) GetAll(instrumentID string) ([]models.Bar, error) {
	if instrumentID == "" {
		return nil, errors.New("instrument id cannot be empty")
	}
	var bars []models.Bar
	err := r.db.Where("instrument_id = ?", instrumentID).
		Order("timestamp ASC").
		Find(&bars).Error
	if err != nil {
		return nil, &models.PersistenceError{Op: "load bars", Key: instrumentID, Err: err}
	}
	return bars, nil
}

// GetLatest returns the most recent bar for an instrument, or nil when none
// is stored yet.
func (r *BarRepository) GetLatest(instrumentID string) (*models.Bar, error) {
	if instrumentID == "" {
		return nil, errors.New("instrument id cannot be empty")
	}
	var bar models.Bar
	err := r.db.Where("instrument_id = ?", instrumentID).
		Order("timestamp DESC").
		First(&bar).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "load latest bar", Key: instrumentID, Err: err}
	}
	return &bar, nil
}
