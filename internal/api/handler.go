// Package api provides the HTTP handlers for the chat backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/set-night/mindcoach/internal/config"
	"github.com/set-night/mindcoach/internal/domain"
	"github.com/set-night/mindcoach/internal/service"
)

// ModelLister is satisfied by the OpenRouter client. It is nil when the
// server runs against the mock completer.
type ModelLister interface {
	ListModels(ctx context.Context) ([]domain.AIModel, error)
}

// Handler carries the services shared by every route.
type Handler struct {
	chat    *service.ChatService
	reports *service.ReportService
	models  ModelLister
	usage   *service.UsageMeter
	pages   *pageRenderer
}

func NewHandler(chat *service.ChatService, reports *service.ReportService, models ModelLister, usage *service.UsageMeter) *Handler {
	return &Handler{
		chat:    chat,
		reports: reports,
		models:  models,
		usage:   usage,
		pages:   newPageRenderer(),
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"detail": message})
}

// StatusFor maps an error from the service layer to an HTTP status.
// Rate-limit rejections answer 401, which existing clients depend on.
func StatusFor(err error) int {
	switch {
	case domain.IsTooManyRequests(err):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	Error(w, status, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
