package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"MarketSignals/internal/models"
)

// SignalReader is the slice of the signal repository the HTTP layer needs.
type SignalReader interface {
	ListRecent(limit int) ([]models.Signal, error)
	ListByInstrument(instrumentID string, limit int) ([]models.Signal, error)
}

// SignalHandler serves stored signals to the dashboard and notifier. It is a
// read-only surface; signals are only ever written by the engine.
type SignalHandler struct {
	signals SignalReader
	log     zerolog.Logger
}

func NewSignalHandler(signals SignalReader, log zerolog.Logger) *SignalHandler {
	return &SignalHandler{
		signals: signals,
		log:     log.With().Str("component", "signal_handler").Logger(),
	}
}

// Routes returns the signal API routes.
func (h *SignalHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listRecent)
	r.Get("/{instrument}", h.listByInstrument)
	return r
}

func (h *SignalHandler) listRecent(w http.ResponseWriter, r *http.Request) {
	signals, err := h.signals.ListRecent(parseLimit(r))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list signals")
		writeError(w, http.StatusInternalServerError, "failed to load signals")
		return
	}
	writeJSON(w, http.StatusOK, signals)
}

func (h *SignalHandler) listByInstrument(w http.ResponseWriter, r *http.Request) {
	instrumentID := chi.URLParam(r, "instrument")
	signals, err := h.signals.ListByInstrument(instrumentID, parseLimit(r))
	if err != nil {
		h.log.Error().Err(err).Str("instrument", instrumentID).Msg("Failed to list signals")
		writeError(w, http.StatusInternalServerError, "failed to load signals")
		return
	}
	writeJSON(w, http.StatusOK, signals)
}

// Shared response helpers

func parseLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return 50
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
