package backtest

import (
	"errors"

	"github.com/rs/zerolog"

	"MarketSignals/internal/models"
	"MarketSignals/internal/services/indicators"
	"MarketSignals/internal/services/scoring"
	"MarketSignals/internal/services/strategy"
)

// SummaryStore is the outbound collaborator accepting whole-row replacement
// of backtest summaries.
type SummaryStore interface {
	Replace(summary *models.BacktestSummary) error
}

// ReplayEngine re-runs the live evaluation pipeline over a historical bar
// range and aggregates trade statistics. It never writes live signals.
//
// The position model is long-only: FLAT -> LONG -> FLAT. A SELL while flat is
// ignored for trade accounting (no shorting), and an unclosed position at the
// end of the range is excluded from the statistics rather than force-closed.
// TotalReturn is the plain sum of per-trade percentage returns, not a
// compounded figure.
type ReplayEngine struct {
	indicators   *indicators.Service
	indicatorCfg indicators.Config
	resolver     strategy.Resolver
	scorer       *scoring.Scorer
	log          zerolog.Logger
}

func NewReplayEngine(
	indicatorSvc *indicators.Service,
	indicatorCfg indicators.Config,
	resolver strategy.Resolver,
	scorer *scoring.Scorer,
	log zerolog.Logger,
) *ReplayEngine {
	return &ReplayEngine{
		indicators:   indicatorSvc,
		indicatorCfg: indicatorCfg,
		resolver:     resolver,
		scorer:       scorer,
		log:          log.With().Str("component", "replay_engine").Logger(),
	}
}

// Replay computes the full indicator series once, then evaluates the
// strategy at every bar with the previous bar's snapshot as context, exactly
// mirroring live evaluation with no lookahead.
func (e *ReplayEngine) Replay(instrumentID string, bars []models.Bar, rangeLabel string) (*models.BacktestSummary, error) {
	if instrumentID == "" {
		return nil, errors.New("instrument id cannot be empty")
	}
	if len(bars) == 0 {
		return nil, errors.New("no bars supplied")
	}

	snapshots, err := e.indicators.Compute(bars, e.indicatorCfg)
	if err != nil {
		return nil, err
	}

	strat := e.resolver.Resolve(instrumentID)

	var returns []float64
	inPosition := false
	entryPrice := 0.0
	strengthTotal := 0
	actionable := 0

	for i, bar := range bars {
		var previous *indicators.Snapshot
		if i > 0 {
			previous = &snapshots[i-1]
		}

		decision, err := strat.Evaluate(bar, snapshots[i], previous)
		if err != nil {
			return nil, &models.StrategyEvaluationError{
				InstrumentID: instrumentID,
				Timestamp:    bar.Timestamp,
				RuleVersion:  strat.Name(),
				Err:          err,
			}
		}
		if decision.SignalType != models.SignalTypeHold {
			strengthTotal += e.scorer.Score(decision)
			actionable++
		}

		switch decision.SignalType {
		case models.SignalTypeBuy:
			if !inPosition {
				inPosition = true
				entryPrice = bar.Close
			}
		case models.SignalTypeSell:
			if inPosition && entryPrice != 0 {
				returns = append(returns, (bar.Close-entryPrice)/entryPrice*100)
				inPosition = false
				entryPrice = 0
			}
		}
	}

	summary := e.summarize(instrumentID, bars, rangeLabel, strat.Name(), returns)
	if actionable > 0 {
		summary.AvgStrength = float64(strengthTotal) / float64(actionable)
	}

	e.log.Info().
		Str("instrument", instrumentID).
		Str("range", rangeLabel).
		Int("trades", summary.Trades).
		Float64("total_return", summary.TotalReturn).
		Bool("open_position_excluded", inPosition).
		Msg("Replay complete")

	return summary, nil
}

// RunAndStore replays the range and replaces the stored summary wholesale.
func (e *ReplayEngine) RunAndStore(instrumentID string, bars []models.Bar, rangeLabel string, store SummaryStore) (*models.BacktestSummary, error) {
	summary, err := e.Replay(instrumentID, bars, rangeLabel)
	if err != nil {
		return nil, err
	}
	if err := store.Replace(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// Private helper methods

func (e *ReplayEngine) summarize(instrumentID string, bars []models.Bar, rangeLabel, ruleVersion string, returns []float64) *models.BacktestSummary {
	summary := &models.BacktestSummary{
		InstrumentID:   instrumentID,
		RangeLabel:     rangeLabel,
		RuleVersion:    ruleVersion,
		StartTimestamp: bars[0].Timestamp,
		EndTimestamp:   bars[len(bars)-1].Timestamp,
		Trades:         len(returns),
	}
	if len(returns) == 0 {
		return summary
	}

	wins := 0
	total := 0.0
	for _, ret := range returns {
		total += ret
		if ret > 0 {
			wins++
		}
	}

	summary.WinRate = float64(wins) / float64(len(returns)) * 100
	summary.AvgReturn = total / float64(len(returns))
	summary.TotalReturn = total
	return summary
}
