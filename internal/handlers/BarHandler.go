package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"MarketSignals/internal/models"
)

// BarReader is the slice of the bar repository the HTTP layer needs.
type BarReader interface {
	GetRange(instrumentID string, start, end time.Time) ([]models.Bar, error)
}

// BarHandler serves the stored market data backing the signals, so the
// dashboard can chart the bars a recommendation was derived from.
type BarHandler struct {
	bars BarReader
	log  zerolog.Logger
}

func NewBarHandler(bars BarReader, log zerolog.Logger) *BarHandler {
	return &BarHandler{
		bars: bars,
		log:  log.With().Str("component", "bar_handler").Logger(),
	}
}

// Routes returns the market data API routes.
func (h *BarHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{instrument}", h.getRange)
	return r
}

func (h *BarHandler) getRange(w http.ResponseWriter, r *http.Request) {
	instrumentID := chi.URLParam(r, "instrument")
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -parseDays(r))

	bars, err := h.bars.GetRange(instrumentID, start, end)
	if err != nil {
		h.log.Error().Err(err).Str("instrument", instrumentID).Msg("Failed to load bars")
		writeError(w, http.StatusInternalServerError, "failed to load bars")
		return
	}
	writeJSON(w, http.StatusOK, bars)
}

func parseDays(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days <= 0 {
		return 30
	}
	return days
}
