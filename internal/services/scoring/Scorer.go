package scoring

import (
	"math"

	"MarketSignals/internal/models"
	"MarketSignals/internal/services/strategy"
)

// Scoring constants. These are tuning parameters, not laws:
//   - RSI heuristic: |rsi-50| * 2, so the neutral midpoint scores 0 and the
//     rails (0 or 100) score 100.
//   - EMA heuristic: separation percentage * 8, capped at 80 so a runaway
//     spread cannot monopolize the score.
//   - Double confirmation adds a flat +20, which floors an RSI-25 confirmed
//     setup at 70.
const (
	rsiDistanceWeight = 2.0
	emaSpreadWeight   = 8.0
	emaSpreadCap      = 80.0
	confirmationBonus = 20.0
)

// Scorer converts a strategy decision into a bounded 0-100 confidence score.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score returns an integer in [0, 100]. HOLD always scores 0. For BUY/SELL
// the RSI-distance and EMA-separation heuristics compete and the larger one
// wins, then the confirmation bonus applies.
func (s *Scorer) Score(decision strategy.Decision) int {
	if decision.SignalType == models.SignalTypeHold {
		return 0
	}

	rsiScore := decision.RawInputs[strategy.RawInputRSIDistance] * rsiDistanceWeight
	emaScore := math.Min(decision.RawInputs[strategy.RawInputEMASpreadPct]*emaSpreadWeight, emaSpreadCap)

	score := math.Max(rsiScore, emaScore)
	if decision.DoubleConfirmed {
		score += confirmationBonus
	}

	return clamp(score)
}

func clamp(score float64) int {
	rounded := int(math.Round(score))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
