package strategy

import (
	"fmt"
	"math"

	"MarketSignals/internal/models"
	"MarketSignals/internal/services/indicators"
)

// MomentumStrategy is the crypto asset-class default. It diverges from the
// baseline reference semantics: direction comes from the MACD histogram and
// EMA alignment rather than RSI thresholds, since crypto instruments trend
// hard enough that oversold readings alone are poor entries. RSI only serves
// as a secondary confirmation.
type MomentumStrategy struct{}

func NewMomentumStrategy() *MomentumStrategy {
	return &MomentumStrategy{}
}

func (s *MomentumStrategy) Name() string {
	return "crypto_momentum_v1"
}

func (s *MomentumStrategy) Evaluate(bar models.Bar, snapshot indicators.Snapshot, previous *indicators.Snapshot) (Decision, error) {
	if snapshot.MACDHistogram == nil || snapshot.EMAFast == nil || snapshot.EMASlow == nil {
		return holdDecision("Insufficient history for MACD"), nil
	}

	histogram := *snapshot.MACDHistogram
	spread := *snapshot.EMAFast - *snapshot.EMASlow
	rsi := 50.0
	if snapshot.RSI != nil {
		rsi = *snapshot.RSI
	}

	rawInputs := map[string]float64{
		RawInputRSIDistance:   math.Abs(rsi - 50),
		RawInputEMASpreadPct:  emaSpreadPct(*snapshot.EMAFast, *snapshot.EMASlow),
		RawInputMACDHistogram: histogram,
	}

	switch {
	case histogram > 0 && spread >= 0:
		reasons := []string{
			fmt.Sprintf("MACD histogram positive (%.2f)", histogram),
			"EMA fast above EMA slow (bullish momentum)",
		}
		confirmed := false
		if snapshot.RSI != nil && rsi < 40 {
			reasons = append(reasons, fmt.Sprintf("RSI %.1f below 40 (room to run)", rsi))
			confirmed = true
		}
		return Decision{
			SignalType:      models.SignalTypeBuy,
			Reasoning:       reasons,
			RawInputs:       rawInputs,
			DoubleConfirmed: confirmed,
		}, nil

	case histogram < 0 && spread < 0:
		reasons := []string{
			fmt.Sprintf("MACD histogram negative (%.2f)", histogram),
			"EMA fast below EMA slow (bearish momentum)",
		}
		confirmed := false
		if snapshot.RSI != nil && rsi > 60 {
			reasons = append(reasons, fmt.Sprintf("RSI %.1f elevated (selling pressure likely)", rsi))
			confirmed = true
		}
		return Decision{
			SignalType:      models.SignalTypeSell,
			Reasoning:       reasons,
			RawInputs:       rawInputs,
			DoubleConfirmed: confirmed,
		}, nil
	}

	return holdDecision("Momentum neutral"), nil
}
