package backtest

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketSignals/internal/models"
	"MarketSignals/internal/services/indicators"
	"MarketSignals/internal/services/scoring"
	"MarketSignals/internal/services/strategy"
)

// scriptedStrategy returns a fixed decision per close price, letting tests
// drive the position state machine with exact signal sequences.
type scriptedStrategy struct {
	signals   map[float64]string
	rawInputs map[string]float64
	err       error
}

func (s *scriptedStrategy) Name() string {
	return "scripted_v1"
}

func (s *scriptedStrategy) Evaluate(bar models.Bar, snapshot indicators.Snapshot, previous *indicators.Snapshot) (strategy.Decision, error) {
	if s.err != nil {
		return strategy.Decision{}, s.err
	}
	signalType, ok := s.signals[bar.Close]
	if !ok {
		signalType = models.SignalTypeHold
	}
	return strategy.Decision{
		SignalType: signalType,
		Reasoning:  []string{"scripted"},
		RawInputs:  s.rawInputs,
	}, nil
}

type staticResolver struct {
	strat strategy.Strategy
}

func (r *staticResolver) Resolve(instrumentID string) strategy.Strategy {
	return r.strat
}

type fakeSummaryStore struct {
	replaced []*models.BacktestSummary
	err      error
}

func (s *fakeSummaryStore) Replace(summary *models.BacktestSummary) error {
	if s.err != nil {
		return s.err
	}
	s.replaced = append(s.replaced, summary)
	return nil
}

func replayBars(closes ...float64) []models.Bar {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			InstrumentID: "AAPL",
			Timestamp:    start.AddDate(0, 0, i),
			Open:         c,
			High:         c,
			Low:          c,
			Close:        c,
			Volume:       1000,
		}
	}
	return bars
}

func newScriptedEngine(strat strategy.Strategy) *ReplayEngine {
	return NewReplayEngine(
		indicators.NewService(),
		indicators.DefaultConfig(),
		&staticResolver{strat: strat},
		scoring.NewScorer(),
		zerolog.Nop(),
	)
}

func TestReplayTradePairing(t *testing.T) {
	engine := newScriptedEngine(&scriptedStrategy{signals: map[float64]string{
		100: models.SignalTypeBuy,
		110: models.SignalTypeSell,
		105: models.SignalTypeBuy,
	}})

	// BUY, HOLD, SELL, BUY, HOLD: one closed trade (100 -> 110) and one open
	// position at 105 that must not be counted.
	summary, err := engine.Replay("AAPL", replayBars(100, 101, 110, 105, 108), "test-window")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Trades, "the unclosed position is excluded")
	assert.InDelta(t, 100.0, summary.WinRate, 1e-9)
	assert.InDelta(t, 10.0, summary.AvgReturn, 1e-9, "enter 100 exit 110 is a 10% trade")
	assert.InDelta(t, 10.0, summary.TotalReturn, 1e-9)
	assert.Equal(t, "scripted_v1", summary.RuleVersion)
	assert.Equal(t, "AAPL", summary.InstrumentID)
	assert.Equal(t, "test-window", summary.RangeLabel)
}

func TestReplayAverageStrength(t *testing.T) {
	engine := newScriptedEngine(&scriptedStrategy{
		signals: map[float64]string{
			100: models.SignalTypeBuy,
			110: models.SignalTypeSell,
		},
		rawInputs: map[string]float64{"rsi_distance": 25},
	})

	// BUY, HOLD, SELL: two actionable decisions, each worth 25 * 2 = 50 from
	// RSI distance. The HOLD contributes nothing to the average.
	summary, err := engine.Replay("AAPL", replayBars(100, 101, 110), "test-window")
	require.NoError(t, err)
	assert.InDelta(t, 50.0, summary.AvgStrength, 1e-9)
}

func TestReplayAverageStrengthAllHolds(t *testing.T) {
	engine := newScriptedEngine(&scriptedStrategy{signals: map[float64]string{}})

	summary, err := engine.Replay("AAPL", replayBars(100, 101, 102), "test-window")
	require.NoError(t, err)
	assert.Zero(t, summary.AvgStrength, "a range with no actionable decisions has no strength to average")
}

func TestReplaySellWhileFlatIgnored(t *testing.T) {
	engine := newScriptedEngine(&scriptedStrategy{signals: map[float64]string{
		110: models.SignalTypeSell,
	}})

	summary, err := engine.Replay("AAPL", replayBars(110, 111, 112), "test-window")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Trades, "SELL while flat opens nothing (no shorting)")
	assert.Zero(t, summary.WinRate)
	assert.Zero(t, summary.TotalReturn)
}

func TestReplayTotalReturnIsSummed(t *testing.T) {
	engine := newScriptedEngine(&scriptedStrategy{signals: map[float64]string{
		100: models.SignalTypeBuy,
		120: models.SignalTypeSell,
		80:  models.SignalTypeBuy,
		76:  models.SignalTypeSell,
	}})

	// Trade 1: +20%, trade 2: -5%. Summed, not compounded.
	summary, err := engine.Replay("AAPL", replayBars(100, 120, 80, 76), "test-window")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Trades)
	assert.InDelta(t, 15.0, summary.TotalReturn, 1e-9)
	assert.InDelta(t, 7.5, summary.AvgReturn, 1e-9)
	assert.InDelta(t, 50.0, summary.WinRate, 1e-9)
}

func TestReplayRepeatedBuysKeepFirstEntry(t *testing.T) {
	engine := newScriptedEngine(&scriptedStrategy{signals: map[float64]string{
		100: models.SignalTypeBuy,
		95:  models.SignalTypeBuy,
		110: models.SignalTypeSell,
	}})

	summary, err := engine.Replay("AAPL", replayBars(100, 95, 110), "test-window")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Trades)
	assert.InDelta(t, 10.0, summary.TotalReturn, 1e-9, "a BUY while already long does not re-enter")
}

func TestReplayRejectsOutOfOrder(t *testing.T) {
	engine := newScriptedEngine(&scriptedStrategy{})
	bars := replayBars(100, 101, 102)
	bars[2].Timestamp = bars[0].Timestamp.Add(-time.Hour)

	_, err := engine.Replay("AAPL", bars, "test-window")
	var orderErr *models.DataOrderError
	assert.ErrorAs(t, err, &orderErr)
}

func TestReplayWrapsStrategyFailure(t *testing.T) {
	engine := newScriptedEngine(&scriptedStrategy{err: errors.New("boom")})

	_, err := engine.Replay("AAPL", replayBars(100, 101), "test-window")
	var evalErr *models.StrategyEvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "AAPL", evalErr.InstrumentID)
	assert.Equal(t, "scripted_v1", evalErr.RuleVersion)
}

func TestRunAndStoreReplacesSummary(t *testing.T) {
	engine := newScriptedEngine(&scriptedStrategy{signals: map[float64]string{
		100: models.SignalTypeBuy,
		110: models.SignalTypeSell,
	}})
	store := &fakeSummaryStore{}

	summary, err := engine.RunAndStore("AAPL", replayBars(100, 110), "1y", store)
	require.NoError(t, err)
	require.Len(t, store.replaced, 1)
	assert.Equal(t, summary, store.replaced[0])
}

func TestRunAndStorePropagatesStoreFailure(t *testing.T) {
	engine := newScriptedEngine(&scriptedStrategy{})
	store := &fakeSummaryStore{err: &models.PersistenceError{Op: "replace backtest summary", Err: errors.New("connection refused")}}

	_, err := engine.RunAndStore("AAPL", replayBars(100, 101), "1y", store)
	var persistErr *models.PersistenceError
	assert.ErrorAs(t, err, &persistErr, "storage outages propagate untouched; retries are the orchestrator's job")
}

func TestReplayBaselineEndToEnd(t *testing.T) {
	// Real pipeline, no scripting: a steady decline pushes RSI to oversold,
	// so the baseline strategy opens a position during the slide; the series
	// ends before any SELL, leaving one open position and zero closed trades.
	registry, err := strategy.NewRegistry(strategy.Config{})
	require.NoError(t, err)

	engine := NewReplayEngine(
		indicators.NewService(),
		indicators.DefaultConfig(),
		registry,
		scoring.NewScorer(),
		zerolog.Nop(),
	)

	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 200 - 2*float64(i)
	}
	summary, err := engine.Replay("AAPL", replayBars(closes...), "decline")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Trades)
	assert.Zero(t, summary.TotalReturn)
}
