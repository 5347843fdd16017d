package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter exposes the health check, the JSON rate endpoint and, when a
// webhook processor is configured, the Telegram webhook route.
func NewRouter(h *Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	router.Get("/api/v1/rate", h.GetCrossRate)
	if h.AcceptsWebhook() {
		router.Post("/telegram/{token}", h.TelegramWebhook)
	}
	return router
}
