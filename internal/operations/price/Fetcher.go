package price

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/rs/zerolog"

	"MarketSignals/internal/models"
)

const (
	klineInterval = "1d"
	klineLimit    = 500 // Binance's max candles per request
)

// Fetcher loads historical daily klines from Binance and maps them to bars.
// Validation beyond parsing is out of scope here: the engine's ordering check
// is the gatekeeper for whatever a source hands us.
type Fetcher struct {
	client *binance.Client
	log    zerolog.Logger
}

func NewFetcher(client *binance.Client, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		log:    log.With().Str("component", "price_fetcher").Logger(),
	}
}

// FetchDaily returns daily bars for the instrument covering [start, end],
// fetched in 500-candle chunks.
func (f *Fetcher) FetchDaily(ctx context.Context, instrumentID string, start, end time.Time) ([]models.Bar, error) {
	var bars []models.Bar

	chunk := klineLimit * 24 * time.Hour
	currentStart := start

	for currentStart.Before(end) {
		currentEnd := currentStart.Add(chunk)
		if currentEnd.After(end) {
			currentEnd = end
		}

		klines, err := f.client.NewKlinesService().
			Symbol(instrumentID).
			Interval(klineInterval).
			StartTime(currentStart.UnixMilli()).
			EndTime(currentEnd.UnixMilli()).
			Limit(klineLimit).
			Do(ctx)
		if err != nil {
			return nil, err
		}

		for _, k := range klines {
			bars = append(bars, f.toBar(instrumentID, k))
		}

		f.log.Debug().
			Str("instrument", instrumentID).
			Int("candles", len(klines)).
			Time("from", currentStart).
			Time("to", currentEnd).
			Msg("Fetched daily klines")

		currentStart = currentEnd

		// Small delay to stay under rate limits
		time.Sleep(100 * time.Millisecond)
	}

	return bars, nil
}

// FetchLatest returns the most recent daily bar for the instrument.
func (f *Fetcher) FetchLatest(ctx context.Context, instrumentID string) (*models.Bar, error) {
	klines, err := f.client.NewKlinesService().
		Symbol(instrumentID).
		Interval(klineInterval).
		Limit(1).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(klines) == 0 {
		return nil, nil
	}
	bar := f.toBar(instrumentID, klines[0])
	return &bar, nil
}

// Private helper methods

func (f *Fetcher) toBar(instrumentID string, k *binance.Kline) models.Bar {
	return models.Bar{
		InstrumentID: instrumentID,
		Timestamp:    time.UnixMilli(k.OpenTime).UTC(),
		Open:         f.parseFloat(k.Open),
		High:         f.parseFloat(k.High),
		Low:          f.parseFloat(k.Low),
		Close:        f.parseFloat(k.Close),
		Volume:       int64(f.parseFloat(k.Volume)),
	}
}

func (f *Fetcher) parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.log.Warn().Err(err).Str("value", s).Msg("Failed to parse kline value")
		return 0
	}
	return v
}
