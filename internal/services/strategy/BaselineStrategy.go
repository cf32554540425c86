package strategy

import (
	"fmt"
	"math"

	"MarketSignals/internal/models"
	"MarketSignals/internal/services/indicators"
)

const (
	defaultRSIOversold   = 30.0
	defaultRSIOverbought = 70.0
)

// BaselineStrategy is the fallback strategy used when nothing else is
// configured for an instrument: RSI thresholds decide direction, an EMA
// crossover confirms or triggers it on its own. When both rules agree the
// decision is marked double-confirmed.
type BaselineStrategy struct {
	oversold   float64
	overbought float64
}

func NewBaselineStrategy() *BaselineStrategy {
	return &BaselineStrategy{
		oversold:   defaultRSIOversold,
		overbought: defaultRSIOverbought,
	}
}

// NewBaselineStrategyWithThresholds builds a baseline strategy with custom
// RSI thresholds from per-instrument configuration overrides.
func NewBaselineStrategyWithThresholds(oversold, overbought float64) *BaselineStrategy {
	return &BaselineStrategy{
		oversold:   oversold,
		overbought: overbought,
	}
}

func (s *BaselineStrategy) Name() string {
	return "baseline_v1"
}

func (s *BaselineStrategy) Evaluate(bar models.Bar, snapshot indicators.Snapshot, previous *indicators.Snapshot) (Decision, error) {
	if s.oversold >= s.overbought {
		return Decision{}, fmt.Errorf("invalid RSI thresholds: oversold %.1f >= overbought %.1f", s.oversold, s.overbought)
	}

	if snapshot.RSI == nil {
		return holdDecision("Insufficient history for RSI"), nil
	}
	rsi := *snapshot.RSI

	signalType := models.SignalTypeHold
	var reasons []string

	if rsi < s.oversold {
		signalType = models.SignalTypeBuy
		reasons = append(reasons, fmt.Sprintf("RSI oversold (%.1f)", rsi))
	} else if rsi > s.overbought {
		signalType = models.SignalTypeSell
		reasons = append(reasons, fmt.Sprintf("RSI overbought (%.1f)", rsi))
	}

	doubleConfirmed := false
	if bullishCrossover(previous, snapshot) && signalType != models.SignalTypeSell {
		doubleConfirmed = signalType == models.SignalTypeBuy
		signalType = models.SignalTypeBuy
		reasons = append(reasons, "EMA bullish crossover")
	} else if bearishCrossover(previous, snapshot) && signalType != models.SignalTypeBuy {
		doubleConfirmed = signalType == models.SignalTypeSell
		signalType = models.SignalTypeSell
		reasons = append(reasons, "EMA bearish crossover")
	}

	if signalType == models.SignalTypeHold {
		return holdDecision("No strong setup detected"), nil
	}

	rawInputs := map[string]float64{
		RawInputRSIDistance: math.Abs(rsi - 50),
	}
	if snapshot.EMAFast != nil && snapshot.EMASlow != nil {
		rawInputs[RawInputEMASpreadPct] = emaSpreadPct(*snapshot.EMAFast, *snapshot.EMASlow)
	}

	return Decision{
		SignalType:      signalType,
		Reasoning:       reasons,
		RawInputs:       rawInputs,
		DoubleConfirmed: doubleConfirmed,
	}, nil
}
