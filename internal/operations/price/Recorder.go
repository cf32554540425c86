package price

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"MarketSignals/internal/models"
	"MarketSignals/internal/repositories"
)

// Recorder periodically records the latest daily bar for each instrument.
type Recorder struct {
	fetcher     *Fetcher
	barRepo     *repositories.BarRepository
	instruments []string
	log         zerolog.Logger
}

func NewRecorder(fetcher *Fetcher, barRepo *repositories.BarRepository, instruments []string, log zerolog.Logger) *Recorder {
	return &Recorder{
		fetcher:     fetcher,
		barRepo:     barRepo,
		instruments: instruments,
		log:         log.With().Str("component", "price_recorder").Logger(),
	}
}

// Start records bars on the given interval until the context is cancelled.
func (r *Recorder) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.log.Info().Dur("interval", interval).Msg("Price recording started")

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("Price recording stopped")
			return
		case <-ticker.C:
			r.RecordLatest(ctx)
		}
	}
}

// RecordLatest fetches and stores the most recent bar for every instrument.
// Individual instrument failures are logged and skipped; a market-data
// hiccup for one symbol must not starve the rest.
func (r *Recorder) RecordLatest(ctx context.Context) {
	for _, instrumentID := range r.instruments {
		bar, err := r.fetcher.FetchLatest(ctx, instrumentID)
		if err != nil {
			r.log.Error().Err(err).Str("instrument", instrumentID).Msg("Failed to fetch latest bar")
			continue
		}
		if bar == nil {
			continue
		}

		if err := r.barRepo.SaveBatch([]models.Bar{*bar}); err != nil {
			r.log.Error().Err(err).Str("instrument", instrumentID).Msg("Failed to save bar")
			continue
		}

		r.log.Debug().
			Str("instrument", instrumentID).
			Float64("close", bar.Close).
			Time("bar", bar.Timestamp).
			Msg("Recorded bar")
	}
}
