package strategy

import (
	"fmt"
)

// Strategy names accepted in configuration.
const (
	StrategyBaseline       = "baseline"
	StrategyCryptoMomentum = "crypto_momentum"
	StrategyMeanReversion  = "mean_reversion"
)

// Config is the explicit strategy configuration passed in at construction
// time. It is never read from ambient process state, so tests can inject
// arbitrary mappings. An empty Config resolves everything to the baseline
// strategy.
type Config struct {
	// InstrumentStrategies maps an instrument id to a strategy name and wins
	// over any asset-class default.
	InstrumentStrategies map[string]string

	// InstrumentClasses maps an instrument id to its asset class
	// (e.g. "crypto", "equity").
	InstrumentClasses map[string]string

	// AssetClassDefaults maps an asset class to a strategy name.
	AssetClassDefaults map[string]string

	// RSIOversold / RSIOverbought hold per-instrument RSI threshold
	// overrides for strategies that consume them.
	RSIOversold   map[string]float64
	RSIOverbought map[string]float64
}

// Registry resolves instruments to strategies. All strategies are built once
// at construction from the supplied Config, not re-discovered per call.
type Registry struct {
	byInstrument map[string]Strategy
	fallback     Strategy
}

// NewRegistry builds every configured strategy up front. Unknown strategy
// names fail fast rather than degrading to the baseline silently.
func NewRegistry(cfg Config) (*Registry, error) {
	registry := &Registry{
		byInstrument: make(map[string]Strategy),
		fallback:     NewBaselineStrategy(),
	}

	instruments := make(map[string]struct{})
	for id := range cfg.InstrumentStrategies {
		instruments[id] = struct{}{}
	}
	for id := range cfg.InstrumentClasses {
		instruments[id] = struct{}{}
	}
	for id := range cfg.RSIOversold {
		instruments[id] = struct{}{}
	}
	for id := range cfg.RSIOverbought {
		instruments[id] = struct{}{}
	}

	for id := range instruments {
		name := resolveName(cfg, id)
		strat, err := buildStrategy(name, thresholdOverrides(cfg, id))
		if err != nil {
			return nil, fmt.Errorf("instrument %s: %w", id, err)
		}
		registry.byInstrument[id] = strat
	}

	return registry, nil
}

// Resolve returns the strategy configured for the instrument, falling back
// to the baseline when nothing is configured.
func (r *Registry) Resolve(instrumentID string) Strategy {
	if strat, ok := r.byInstrument[instrumentID]; ok {
		return strat
	}
	return r.fallback
}

// Private helper methods

func resolveName(cfg Config, instrumentID string) string {
	if name, ok := cfg.InstrumentStrategies[instrumentID]; ok {
		return name
	}
	if class, ok := cfg.InstrumentClasses[instrumentID]; ok {
		if name, ok := cfg.AssetClassDefaults[class]; ok {
			return name
		}
	}
	return StrategyBaseline
}

type overrides struct {
	oversold   *float64
	overbought *float64
}

func thresholdOverrides(cfg Config, instrumentID string) overrides {
	var o overrides
	if v, ok := cfg.RSIOversold[instrumentID]; ok {
		o.oversold = &v
	}
	if v, ok := cfg.RSIOverbought[instrumentID]; ok {
		o.overbought = &v
	}
	return o
}

func buildStrategy(name string, o overrides) (Strategy, error) {
	switch name {
	case StrategyBaseline:
		oversold, overbought := defaultRSIOversold, defaultRSIOverbought
		if o.oversold != nil {
			oversold = *o.oversold
		}
		if o.overbought != nil {
			overbought = *o.overbought
		}
		return NewBaselineStrategyWithThresholds(oversold, overbought), nil

	case StrategyCryptoMomentum:
		return NewMomentumStrategy(), nil

	case StrategyMeanReversion:
		buyRSI, sellRSI := defaultMeanReversionBuyRSI, defaultMeanReversionSellRSI
		if o.oversold != nil {
			buyRSI = *o.oversold
		}
		if o.overbought != nil {
			sellRSI = *o.overbought
		}
		return NewMeanReversionStrategyWithThresholds(buyRSI, sellRSI), nil
	}

	return nil, fmt.Errorf("unknown strategy %q", name)
}
