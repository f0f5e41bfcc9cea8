package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/set-night/mindcoach/internal/config"
)

// NewRouter wires the global middleware, the JSON API and the chat page.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(chiMiddleware.Timeout(config.RequestTimeout))

	h.RegisterRoutes(r)
	h.RegisterPages(r)

	return r
}
