package indicators

import (
	"fmt"

	"MarketSignals/internal/models"
)

// Config holds indicator parameters. Zero values fall back to the standard
// 14 / 12 / 26 / 9 setup.
type Config struct {
	RSIPeriod      int
	EMAFastSpan    int
	EMASlowSpan    int
	MACDSignalSpan int
}

// DefaultConfig returns the standard daily-bar indicator setup.
func DefaultConfig() Config {
	return Config{
		RSIPeriod:      14,
		EMAFastSpan:    12,
		EMASlowSpan:    26,
		MACDSignalSpan: 9,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = d.RSIPeriod
	}
	if c.EMAFastSpan <= 0 {
		c.EMAFastSpan = d.EMAFastSpan
	}
	if c.EMASlowSpan <= 0 {
		c.EMASlowSpan = d.EMASlowSpan
	}
	if c.MACDSignalSpan <= 0 {
		c.MACDSignalSpan = d.MACDSignalSpan
	}
	return c
}

// Snapshot holds the derived indicator values for one bar. Nil fields are
// undefined (still warming up) and must never be read as zero.
type Snapshot struct {
	RSI           *float64 `json:"rsi"`
	EMAFast       *float64 `json:"ema_fast"`
	EMASlow       *float64 `json:"ema_slow"`
	MACD          *float64 `json:"macd"`
	MACDSignal    *float64 `json:"macd_signal"`
	MACDHistogram *float64 `json:"macd_histogram"`
}

// Service computes per-bar indicator snapshots from an ordered bar series.
type Service struct {
	ema  *EMAService
	rsi  *RSIService
	macd *MACDService
}

func NewService() *Service {
	return &Service{
		ema:  NewEMAService(),
		rsi:  NewRSIService(),
		macd: NewMACDService(),
	}
}

// Compute returns one snapshot per input bar, same length and order as the
// input. It rejects out-of-order input with a DataOrderError before computing
// anything. Fewer than 2 bars produces undefined-filled snapshots, not an
// error: indicators are best-effort and strategies check for nil.
func (s *Service) Compute(bars []models.Bar, cfg Config) ([]Snapshot, error) {
	if err := validateOrder(bars); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if cfg.EMAFastSpan >= cfg.EMASlowSpan {
		return nil, fmt.Errorf("ema fast span %d must be shorter than slow span %d", cfg.EMAFastSpan, cfg.EMASlowSpan)
	}

	snapshots := make([]Snapshot, len(bars))
	if len(bars) < 2 {
		return snapshots, nil
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	emaFast := s.ema.Calculate(closes, cfg.EMAFastSpan)
	emaSlow := s.ema.Calculate(closes, cfg.EMASlowSpan)
	macd, macdSignal, macdHistogram := s.macd.Calculate(closes, cfg.EMAFastSpan, cfg.EMASlowSpan, cfg.MACDSignalSpan)
	rsi := s.rsi.Calculate(closes, cfg.RSIPeriod)

	for i := range bars {
		snapshots[i] = Snapshot{
			RSI:           rsi[i],
			EMAFast:       ptr(emaFast[i]),
			EMASlow:       ptr(emaSlow[i]),
			MACD:          ptr(macd[i]),
			MACDSignal:    ptr(macdSignal[i]),
			MACDHistogram: ptr(macdHistogram[i]),
		}
	}

	return snapshots, nil
}

// Private helper methods

func validateOrder(bars []models.Bar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			return &models.DataOrderError{
				InstrumentID: bars[i].InstrumentID,
				Timestamp:    bars[i].Timestamp,
				Previous:     bars[i-1].Timestamp,
			}
		}
	}
	return nil
}

func ptr(v float64) *float64 {
	return &v
}
