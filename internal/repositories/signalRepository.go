package repositories

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"MarketSignals/internal/models"
)

// WriteResult reports what an upsert did to the stored row.
type WriteResult string

const (
	WriteResultCreated   WriteResult = "created"
	WriteResultUpdated   WriteResult = "updated"
	WriteResultUnchanged WriteResult = "unchanged"
)

type SignalRepository struct {
	db *gorm.DB
}

// NewSignalRepository creates a new instance of SignalRepository
func NewSignalRepository(db *gorm.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

// Upsert writes a signal keyed by its idempotency key. A conflict is the
// expected, handled case: the existing row's mutable fields are overwritten
// in place and no duplicate is ever created. Identical re-runs report
// unchanged. Only a genuine storage failure returns an error.
func (r *SignalRepository) Upsert(signal *models.Signal) (WriteResult, error) {
	if signal == nil {
		return "", errors.New("signal cannot be nil")
	}
	if signal.IdempotencyKey == "" {
		return "", errors.New("signal idempotency key cannot be empty")
	}

	var result WriteResult
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Signal
		err := tx.Where("idempotency_key = ?", signal.IdempotencyKey).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result, err = r.insertOrReconcile(tx, signal)
			return err
		}
		if err != nil {
			return err
		}

		result, err = r.reconcile(tx, &existing, signal)
		return err
	})
	if err != nil {
		return "", &models.PersistenceError{Op: "upsert signal", Key: signal.IdempotencyKey, Err: err}
	}
	return result, nil
}

// insertOrReconcile inserts a fresh row for the key. Overlapping runs race
// between the read and this insert, so the insert tolerates the conflict
// instead of erroring: a zero-row result means another writer just committed
// the key, and the update path runs against that row.
func (r *SignalRepository) insertOrReconcile(tx *gorm.DB, signal *models.Signal) (WriteResult, error) {
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idempotency_key"}},
		DoNothing: true,
	}).Create(signal)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected > 0 {
		return WriteResultCreated, nil
	}

	var existing models.Signal
	if err := tx.Where("idempotency_key = ?", signal.IdempotencyKey).First(&existing).Error; err != nil {
		return "", err
	}
	return r.reconcile(tx, &existing, signal)
}

// reconcile overwrites the stored row's mutable fields in place, reporting
// unchanged when the incoming signal carries nothing new.
func (r *SignalRepository) reconcile(tx *gorm.DB, existing, signal *models.Signal) (WriteResult, error) {
	if sameMutableFields(existing, signal) {
		signal.ID = existing.ID
		return WriteResultUnchanged, nil
	}

	err := tx.Model(existing).Updates(map[string]interface{}{
		"signal_type":     signal.SignalType,
		"strength":        signal.Strength,
		"reasoning":       signal.Reasoning,
		"price_at_signal": signal.PriceAtSignal,
	}).Error
	if err != nil {
		return "", err
	}
	signal.ID = existing.ID
	return WriteResultUpdated, nil
}

// FindByKey returns the signal stored under an idempotency key, or nil.
func (r *SignalRepository) FindByKey(key string) (*models.Signal, error) {
	var signal models.Signal
	err := r.db.Where("idempotency_key = ?", key).First(&signal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "load signal", Key: key, Err: err}
	}
	return &signal, nil
}

// ListRecent returns the most recently evaluated signals across instruments.
func (r *SignalRepository) ListRecent(limit int) ([]models.Signal, error) {
	if limit <= 0 {
		limit = 50
	}
	var signals []models.Signal
	err := r.db.Order("timestamp DESC").Limit(limit).Find(&signals).Error
	if err != nil {
		return nil, &models.PersistenceError{Op: "list signals", Err: err}
	}
	return signals, nil
}

// ListByInstrument returns an instrument's signals, newest first.
func (r *SignalRepository) ListByInstrument(instrumentID string, limit int) ([]models.Signal, error) {
	if instrumentID == "" {
		return nil, errors.New("instrument id cannot be empty")
	}
	if limit <= 0 {
		limit = 50
	}
	var signals []models.Signal
	err := r.db.Where("instrument_id = ?", instrumentID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&signals).Error
	if err != nil {
		return nil, &models.PersistenceError{Op: "list signals", Key: instrumentID, Err: err}
	}
	return signals, nil
}

// Private helper methods

func sameMutableFields(existing, incoming *models.Signal) bool {
	if existing.SignalType != incoming.SignalType ||
		existing.Strength != incoming.Strength ||
		existing.PriceAtSignal != incoming.PriceAtSignal ||
		len(existing.Reasoning) != len(incoming.Reasoning) {
		return false
	}
	for i := range existing.Reasoning {
		if existing.Reasoning[i] != incoming.Reasoning[i] {
			return false
		}
	}
	return true
}
