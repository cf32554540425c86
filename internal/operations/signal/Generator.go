package signal

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"MarketSignals/internal/models"
	"MarketSignals/internal/repositories"
	"MarketSignals/internal/services/indicators"
	"MarketSignals/internal/services/scoring"
	"MarketSignals/internal/services/strategy"
)

// SignalStore is the outbound persistence collaborator. The idempotency-key
// upsert is the only concurrency control the engine needs.
type SignalStore interface {
	Upsert(signal *models.Signal) (repositories.WriteResult, error)
}

// Result is one live evaluation outcome: the fully constructed signal and
// what the write did. Strength and signal type are exposed so an external
// notifier can threshold on them.
type Result struct {
	Signal models.Signal
	Write  repositories.WriteResult
}

// Generator runs the live pipeline for one instrument at a time: indicators
// over the whole supplied series, strategy at the latest bar, score, then a
// single idempotent write. It holds no mutable state, so evaluations of
// different instruments may run concurrently.
type Generator struct {
	indicators   *indicators.Service
	indicatorCfg indicators.Config
	resolver     strategy.Resolver
	scorer       *scoring.Scorer
	store        SignalStore
	log          zerolog.Logger
}

func NewGenerator(
	indicatorSvc *indicators.Service,
	indicatorCfg indicators.Config,
	resolver strategy.Resolver,
	scorer *scoring.Scorer,
	store SignalStore,
	log zerolog.Logger,
) *Generator {
	return &Generator{
		indicators:   indicatorSvc,
		indicatorCfg: indicatorCfg,
		resolver:     resolver,
		scorer:       scorer,
		store:        store,
		log:          log.With().Str("component", "signal_generator").Logger(),
	}
}

// Generate evaluates the latest bar of an ordered series and persists the
// resulting signal. Ordering violations surface as DataOrderError before any
// indicator is computed; strategy failures carry instrument, timestamp and
// rule version.
func (g *Generator) Generate(bars []models.Bar) (*Result, error) {
	if len(bars) == 0 {
		return nil, errors.New("no bars supplied")
	}

	snapshots, err := g.indicators.Compute(bars, g.indicatorCfg)
	if err != nil {
		return nil, err
	}

	latest := bars[len(bars)-1]
	snapshot := snapshots[len(snapshots)-1]
	var previous *indicators.Snapshot
	if len(snapshots) > 1 {
		previous = &snapshots[len(snapshots)-2]
	}

	strat := g.resolver.Resolve(latest.InstrumentID)
	decision, err := strat.Evaluate(latest, snapshot, previous)
	if err != nil {
		return nil, &models.StrategyEvaluationError{
			InstrumentID: latest.InstrumentID,
			Timestamp:    latest.Timestamp,
			RuleVersion:  strat.Name(),
			Err:          err,
		}
	}

	sig := models.Signal{
		InstrumentID:   latest.InstrumentID,
		Timestamp:      latest.Timestamp,
		SignalType:     decision.SignalType,
		Strength:       g.scorer.Score(decision),
		Reasoning:      decision.Reasoning,
		PriceAtSignal:  latest.Close,
		RuleVersion:    strat.Name(),
		IdempotencyKey: models.IdempotencyKey(latest.InstrumentID, strat.Name(), latest.Timestamp),
	}

	write, err := g.store.Upsert(&sig)
	if err != nil {
		return nil, err
	}

	g.log.Info().
		Str("instrument", sig.InstrumentID).
		Str("signal", sig.SignalType).
		Int("strength", sig.Strength).
		Str("write", string(write)).
		Time("bar", sig.Timestamp).
		Msg("Signal evaluated")

	return &Result{Signal: sig, Write: write}, nil
}

// GenerateBatch fans out across instruments. Evaluations are independent, so
// they run in parallel; one instrument failing never aborts the others. The
// returned error map holds per-instrument failures.
func (g *Generator) GenerateBatch(barsByInstrument map[string][]models.Bar) (map[string]*Result, map[string]error) {
	results := make(map[string]*Result)
	failures := make(map[string]error)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for instrumentID, bars := range barsByInstrument {
		wg.Add(1)
		go func(instrumentID string, bars []models.Bar) {
			defer wg.Done()
			result, err := g.Generate(bars)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				g.log.Error().Err(err).Str("instrument", instrumentID).Msg("Signal generation failed")
				failures[instrumentID] = err
				return
			}
			results[instrumentID] = result
		}(instrumentID, bars)
	}

	wg.Wait()
	return results, failures
}
