package strategy

import (
	"fmt"
	"math"

	"MarketSignals/internal/models"
	"MarketSignals/internal/services/indicators"
)

const (
	defaultMeanReversionBuyRSI  = 35.0
	defaultMeanReversionSellRSI = 70.0
)

// MeanReversionStrategy is the equity asset-class default. It diverges from
// the baseline reference semantics: entries require RSI extreme AND EMA
// alignment together, so every non-HOLD decision is double-confirmed by
// construction. The buy threshold sits at 35 rather than 30 because daily
// equity bars rarely print deep oversold readings.
type MeanReversionStrategy struct {
	buyRSI  float64
	sellRSI float64
}

func NewMeanReversionStrategy() *MeanReversionStrategy {
	return &MeanReversionStrategy{
		buyRSI:  defaultMeanReversionBuyRSI,
		sellRSI: defaultMeanReversionSellRSI,
	}
}

// NewMeanReversionStrategyWithThresholds applies per-instrument RSI
// threshold overrides from configuration.
func NewMeanReversionStrategyWithThresholds(buyRSI, sellRSI float64) *MeanReversionStrategy {
	return &MeanReversionStrategy{
		buyRSI:  buyRSI,
		sellRSI: sellRSI,
	}
}

func (s *MeanReversionStrategy) Name() string {
	return "mean_reversion_v1"
}

func (s *MeanReversionStrategy) Evaluate(bar models.Bar, snapshot indicators.Snapshot, previous *indicators.Snapshot) (Decision, error) {
	if s.buyRSI >= s.sellRSI {
		return Decision{}, fmt.Errorf("invalid RSI thresholds: buy %.1f >= sell %.1f", s.buyRSI, s.sellRSI)
	}

	if snapshot.RSI == nil {
		return holdDecision("Insufficient history for RSI"), nil
	}
	if snapshot.EMAFast == nil || snapshot.EMASlow == nil {
		return holdDecision("Insufficient history for EMA"), nil
	}

	rsi := *snapshot.RSI
	spread := *snapshot.EMAFast - *snapshot.EMASlow

	rawInputs := map[string]float64{
		RawInputRSIDistance:  math.Abs(rsi - 50),
		RawInputEMASpreadPct: emaSpreadPct(*snapshot.EMAFast, *snapshot.EMASlow),
	}

	switch {
	case rsi <= s.buyRSI && spread >= 0:
		return Decision{
			SignalType: models.SignalTypeBuy,
			Reasoning: []string{
				fmt.Sprintf("RSI %.1f at or below %.1f (mean reversion entry)", rsi, s.buyRSI),
				"EMA fast above EMA slow (bullish alignment)",
			},
			RawInputs:       rawInputs,
			DoubleConfirmed: true,
		}, nil

	case rsi >= s.sellRSI && spread < 0:
		return Decision{
			SignalType: models.SignalTypeSell,
			Reasoning: []string{
				fmt.Sprintf("RSI %.1f at or above %.1f (mean reversion exit)", rsi, s.sellRSI),
				"EMA fast below EMA slow (bearish alignment)",
			},
			RawInputs:       rawInputs,
			DoubleConfirmed: true,
		}, nil
	}

	return holdDecision("RSI and EMA spread neutral"), nil
}
