package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"signalboard/src/model"
	"signalboard/src/session"
)

type sessionBoard interface {
	Snapshot() session.View
	Events() []model.TradeEvent
	History() []model.Trade
	CloseActiveTrade(ctx context.Context, reason model.CloseReason) error
}

// SessionHandler exposes the board state over JSON.
type SessionHandler struct {
	board sessionBoard
}

func NewSessionHandler(board sessionBoard) *SessionHandler {
	return &SessionHandler{board: board}
}

func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/state", h.State)
	r.Get("/events", h.ListEvents)
	r.Get("/history", h.ListHistory)
	r.Post("/close", h.Close)
	return r
}

// State returns the live view: running flags, issued signals, the active
// trade and the batch window counters.
func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.board.Snapshot())
}

func (h *SessionHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.board.Events())
}

func (h *SessionHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.board.History())
}

// Close closes the active trade at the last seen price. The reason query
// parameter defaults to MANUAL.
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	reason := model.CloseManual
	if reasonParam := r.URL.Query().Get("reason"); reasonParam != "" {
		switch normalized := model.NormalizeCloseReason(reasonParam); normalized {
		case model.CloseCancelled, model.CloseManual:
			reason = normalized
		default:
			http.Error(w, "invalid reason", http.StatusBadRequest)
			return
		}
	}

	if err := h.board.CloseActiveTrade(r.Context(), reason); err != nil {
		if errors.Is(err, session.ErrNoActiveTrade) {
			http.Error(w, "no active trade", http.StatusConflict)
			return
		}
		logger.WithError(err).Error("failed to close active trade")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"status": "closed", "reason": string(reason)})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("failed to encode response")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
