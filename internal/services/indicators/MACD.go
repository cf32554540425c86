package indicators

type MACDService struct {
	ema *EMAService
}

func NewMACDService() *MACDService {
	return &MACDService{
		ema: NewEMAService(),
	}
}

// Calculate returns MACD line, signal line, and histogram.
// Default spans: fast=12, slow=26, signal=9.
func (s *MACDService) Calculate(closes []float64, fastSpan, slowSpan, signalSpan int) (macd, signal, histogram []float64) {
	if len(closes) == 0 || fastSpan <= 0 || slowSpan <= fastSpan || signalSpan <= 0 {
		return nil, nil, nil
	}

	fastEMA := s.ema.Calculate(closes, fastSpan)
	slowEMA := s.ema.Calculate(closes, slowSpan)

	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	signal = s.ema.Calculate(macd, signalSpan)

	histogram = make([]float64, len(closes))
	for i := range closes {
		histogram[i] = macd[i] - signal[i]
	}

	return macd, signal, histogram
}
