package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketSignals/internal/models"
)

type fakeSignalReader struct {
	recent       []models.Signal
	byInstrument map[string][]models.Signal
	err          error
}

func (f *fakeSignalReader) ListRecent(limit int) ([]models.Signal, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeSignalReader) ListByInstrument(instrumentID string, limit int) ([]models.Signal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byInstrument[instrumentID], nil
}

type fakeBacktestReader struct {
	byInstrument map[string][]models.BacktestSummary
	err          error
}

func (f *fakeBacktestReader) ListByInstrument(instrumentID string) ([]models.BacktestSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byInstrument[instrumentID], nil
}

type fakeBarReader struct {
	bars      []models.Bar
	lastStart time.Time
	lastEnd   time.Time
	err       error
}

func (f *fakeBarReader) GetRange(instrumentID string, start, end time.Time) ([]models.Bar, error) {
	f.lastStart = start
	f.lastEnd = end
	if f.err != nil {
		return nil, f.err
	}
	return f.bars, nil
}

func testSignal(instrument string, strength int) models.Signal {
	return models.Signal{
		InstrumentID:   instrument,
		Timestamp:      time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		SignalType:     models.SignalTypeBuy,
		Strength:       strength,
		Reasoning:      []string{"RSI oversold (25.0)"},
		PriceAtSignal:  150,
		RuleVersion:    "baseline_v1",
		IdempotencyKey: models.IdempotencyKey(instrument, "baseline_v1", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)),
	}
}

func TestSignalHandlerListRecent(t *testing.T) {
	reader := &fakeSignalReader{recent: []models.Signal{testSignal("AAPL", 80), testSignal("BTCUSDT", 65)}}
	handler := NewSignalHandler(reader, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var signals []models.Signal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signals))
	require.Len(t, signals, 2)
	assert.Equal(t, "AAPL", signals[0].InstrumentID)
	assert.Equal(t, 80, signals[0].Strength)
}

func TestSignalHandlerLimitQuery(t *testing.T) {
	reader := &fakeSignalReader{recent: []models.Signal{testSignal("AAPL", 80), testSignal("BTCUSDT", 65)}}
	handler := NewSignalHandler(reader, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/?limit=1", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	var signals []models.Signal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signals))
	assert.Len(t, signals, 1)
}

func TestSignalHandlerByInstrument(t *testing.T) {
	reader := &fakeSignalReader{byInstrument: map[string][]models.Signal{
		"AAPL": {testSignal("AAPL", 72)},
	}}
	handler := NewSignalHandler(reader, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/AAPL", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var signals []models.Signal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signals))
	require.Len(t, signals, 1)
	assert.Equal(t, "AAPL", signals[0].InstrumentID)
}

func TestSignalHandlerStorageFailure(t *testing.T) {
	reader := &fakeSignalReader{err: errors.New("connection refused")}
	handler := NewSignalHandler(reader, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBarHandlerByInstrument(t *testing.T) {
	reader := &fakeBarReader{bars: []models.Bar{{
		InstrumentID: "BTCUSDT",
		Timestamp:    time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Close:        43000,
	}}}
	handler := NewBarHandler(reader, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/BTCUSDT", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var bars []models.Bar
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bars))
	require.Len(t, bars, 1)
	assert.Equal(t, "BTCUSDT", bars[0].InstrumentID)
	assert.InDelta(t, 30*24*time.Hour, reader.lastEnd.Sub(reader.lastStart), float64(time.Hour), "default window is 30 days")
}

func TestBarHandlerDaysQuery(t *testing.T) {
	reader := &fakeBarReader{}
	handler := NewBarHandler(reader, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/BTCUSDT?days=90", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 90*24*time.Hour, reader.lastEnd.Sub(reader.lastStart), float64(time.Hour))
}

func TestBarHandlerStorageFailure(t *testing.T) {
	handler := NewBarHandler(&fakeBarReader{err: errors.New("connection refused")}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/BTCUSDT", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBacktestHandlerByInstrument(t *testing.T) {
	reader := &fakeBacktestReader{byInstrument: map[string][]models.BacktestSummary{
		"BTCUSDT": {{
			InstrumentID: "BTCUSDT",
			RangeLabel:   "1y",
			RuleVersion:  "crypto_momentum_v1",
			Trades:       12,
			WinRate:      58.3,
			TotalReturn:  42.5,
		}},
	}}
	handler := NewBacktestHandler(reader, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/BTCUSDT", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var summaries []models.BacktestSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, 12, summaries[0].Trades)
	assert.Equal(t, "crypto_momentum_v1", summaries[0].RuleVersion)
}
