package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"fxcross/internal/convert"
	"fxcross/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"
)

// CrossRater is the slice of the convertor the HTTP surface needs.
type CrossRater interface {
	CrossRate(ctx context.Context) (*convert.CrossQuote, error)
}

// Handler serves the JSON rate endpoint and forwards Telegram webhook
// updates into the bot.
type Handler struct {
	rater         CrossRater
	webhookToken  string
	processUpdate func(u tele.Update)
}

func NewHandler(rater CrossRater, webhookToken string, processUpdate func(u tele.Update)) *Handler {
	return &Handler{rater: rater, webhookToken: webhookToken, processUpdate: processUpdate}
}

func (h *Handler) AcceptsWebhook() bool {
	return h.processUpdate != nil && h.webhookToken != ""
}

type crossRateResponse struct {
	Cross     float64 `json:"cross"`
	Published float64 `json:"published"`
	Message   string  `json:"message"`
}

func (h *Handler) GetCrossRate(w http.ResponseWriter, r *http.Request) {
	quote, err := h.rater.CrossRate(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoQuoteYet) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no data"})
			return
		}
		logrus.Errorf("Cross rate request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, crossRateResponse{
		Cross:     quote.Cross,
		Published: quote.Published,
		Message:   quote.Message,
	})
}

// TelegramWebhook accepts bot updates POSTed by Telegram. The path token
// must match the bot token; a mismatch is answered with 404 so the route
// does not confirm its own existence.
func (h *Handler) TelegramWebhook(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.webhookToken)) != 1 {
		http.NotFound(w, r)
		return
	}

	var update tele.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "malformed update", http.StatusBadRequest)
		return
	}

	h.processUpdate(update)
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}
