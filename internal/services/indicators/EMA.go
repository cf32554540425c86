package indicators

// EMAService provides Exponential Moving Average calculations
type EMAService struct{}

// NewEMAService creates a new EMA service instance
func NewEMAService() *EMAService {
	return &EMAService{}
}

// Calculate computes the EMA for the entire series with smoothing factor
// alpha = 2/(span+1). The first value seeds the average, so every index is
// defined; callers treat the first span bars as warm-up.
func (s *EMAService) Calculate(values []float64, span int) []float64 {
	if len(values) == 0 || span <= 0 {
		return nil
	}

	alpha := s.getMultiplier(span)

	ema := make([]float64, len(values))
	ema[0] = values[0]
	for i := 1; i < len(values); i++ {
		ema[i] = s.calculatePoint(values[i], ema[i-1], alpha)
	}

	return ema
}

// Private helper methods

func (s *EMAService) getMultiplier(span int) float64 {
	return 2.0 / float64(span+1)
}

func (s *EMAService) calculatePoint(value, prevEMA, alpha float64) float64 {
	return (value-prevEMA)*alpha + prevEMA
}
