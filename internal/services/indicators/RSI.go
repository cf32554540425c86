package indicators

type RSIService struct{}

func NewRSIService() *RSIService {
	return &RSIService{}
}

// Calculate computes Wilder-smoothed RSI over the close series. Average gain
// and loss are exponentially smoothed with alpha = 1/period, and the output is
// nil (undefined, not zero) until at least period deltas exist.
//
// Edge cases: avgLoss == 0 with avgGain > 0 yields 100; a perfectly flat
// window (both averages zero) yields 50, the neutral convention, rather than
// an undefined value.
func (s *RSIService) Calculate(closes []float64, period int) []*float64 {
	rsi := make([]*float64, len(closes))
	if period <= 0 || len(closes) < period+1 {
		return rsi
	}

	var avgGain, avgLoss float64
	alpha := 1.0 / float64(period)

	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}

		if i == 1 {
			avgGain = gain
			avgLoss = loss
		} else {
			avgGain = avgGain + (gain-avgGain)*alpha
			avgLoss = avgLoss + (loss-avgLoss)*alpha
		}

		// i deltas have been consumed at bar index i
		if i < period {
			continue
		}

		var value float64
		switch {
		case avgLoss == 0 && avgGain == 0:
			value = 50
		case avgLoss == 0:
			value = 100
		default:
			rs := avgGain / avgLoss
			value = 100 - 100/(1+rs)
		}
		rsi[i] = &value
	}

	return rsi
}
