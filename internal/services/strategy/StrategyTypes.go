package strategy

import (
	"MarketSignals/internal/models"
	"MarketSignals/internal/services/indicators"
)

// Raw input keys strategies publish for the scorer.
const (
	RawInputRSIDistance   = "rsi_distance"
	RawInputEMASpreadPct  = "ema_spread_pct"
	RawInputMACDHistogram = "macd_histogram"
)

// Decision is the ephemeral output of one strategy evaluation. Reasoning is
// ordered: the first entry is the primary driver. DoubleConfirmed marks
// decisions where independent rules agreed on direction; the scorer adds a
// bonus for those.
type Decision struct {
	SignalType      string
	Reasoning       []string
	RawInputs       map[string]float64
	DoubleConfirmed bool
}

// Strategy classifies one bar into BUY/SELL/HOLD from its indicator snapshot.
// Implementations must be pure and deterministic for the same
// (bar, snapshot, previous) so replay and live evaluation agree exactly:
// no I/O, no clock reads, no randomness.
type Strategy interface {
	// Name identifies the strategy implementation and version; it is stored
	// on every signal as the rule version.
	Name() string

	Evaluate(bar models.Bar, snapshot indicators.Snapshot, previous *indicators.Snapshot) (Decision, error)
}

// Resolver maps an instrument to its configured strategy.
type Resolver interface {
	Resolve(instrumentID string) Strategy
}

func holdDecision(reason string) Decision {
	return Decision{
		SignalType: models.SignalTypeHold,
		Reasoning:  []string{reason},
		RawInputs:  map[string]float64{},
	}
}

// emaSpreadPct returns |fast-slow|/slow*100, the EMA separation the scorer
// feeds its magnitude heuristic.
func emaSpreadPct(fast, slow float64) float64 {
	if slow == 0 {
		return 0
	}
	spread := (fast - slow) / slow * 100
	if spread < 0 {
		return -spread
	}
	return spread
}

func bullishCrossover(previous *indicators.Snapshot, current indicators.Snapshot) bool {
	if previous == nil || previous.EMAFast == nil || previous.EMASlow == nil ||
		current.EMAFast == nil || current.EMASlow == nil {
		return false
	}
	return *previous.EMAFast <= *previous.EMASlow && *current.EMAFast > *current.EMASlow
}

func bearishCrossover(previous *indicators.Snapshot, current indicators.Snapshot) bool {
	if previous == nil || previous.EMAFast == nil || previous.EMASlow == nil ||
		current.EMAFast == nil || current.EMASlow == nil {
		return false
	}
	return *previous.EMAFast >= *previous.EMASlow && *current.EMAFast < *current.EMASlow
}
