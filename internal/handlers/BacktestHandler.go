package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"MarketSignals/internal/models"
)

// BacktestReader is the slice of the backtest repository the HTTP layer needs.
type BacktestReader interface {
	ListByInstrument(instrumentID string) ([]models.BacktestSummary, error)
}

// BacktestHandler serves stored replay summaries.
type BacktestHandler struct {
	backtests BacktestReader
	log       zerolog.Logger
}

func NewBacktestHandler(backtests BacktestReader, log zerolog.Logger) *BacktestHandler {
	return &BacktestHandler{
		backtests: backtests,
		log:       log.With().Str("component", "backtest_handler").Logger(),
	}
}

// Routes returns the backtest API routes.
func (h *BacktestHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{instrument}", h.listByInstrument)
	return r
}

func (h *BacktestHandler) listByInstrument(w http.ResponseWriter, r *http.Request) {
	instrumentID := chi.URLParam(r, "instrument")
	summaries, err := h.backtests.ListByInstrument(instrumentID)
	if err != nil {
		h.log.Error().Err(err).Str("instrument", instrumentID).Msg("Failed to list backtests")
		writeError(w, http.StatusInternalServerError, "failed to load backtests")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}
