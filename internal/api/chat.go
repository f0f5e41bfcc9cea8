package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/set-night/mindcoach/internal/config"
	"github.com/set-night/mindcoach/internal/domain"
	"github.com/set-night/mindcoach/internal/service"
)

type chatRequest struct {
	Message *string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type messageView struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func toViews(msgs []domain.ChatMessage) []messageView {
	views := make([]messageView, len(msgs))
	for i, m := range msgs {
		views[i] = messageView{Type: string(m.Role), Text: m.Text}
	}
	return views
}

// userName returns the decoded {user_name} path segment. chi returns the
// raw segment when the request path kept its escaping.
func userName(r *http.Request) (string, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "user_name"))
	if err != nil {
		return "", fmt.Errorf("%w: malformed user name: %v", domain.ErrInvalidInput, err)
	}
	return name, nil
}

// RegisterRoutes registers the per-user chat and report routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/user/{user_name}", func(r chi.Router) {
		r.Post("/ai/chat/response", h.ChatResponse)
		r.Post("/ai/chat/response/advanced", h.ChatResponseAdvanced)
		r.Post("/ai/chat/response/coaching", h.ChatResponseCoaching)
		r.Get("/ai/chat/history", h.ChatHistory)
		r.Get("/ai/chat/status/today", h.ChatStatusToday)
		r.Post("/behavior/report", h.BehaviorReport)
	})
	r.Get("/api/models", h.Models)
	r.Get("/api/usage", h.Usage)
}

func (h *Handler) ChatResponse(w http.ResponseWriter, r *http.Request) {
	h.chatTurn(w, r, service.Plain())
}

func (h *Handler) ChatResponseAdvanced(w http.ResponseWriter, r *http.Request) {
	h.chatTurn(w, r, service.SentimentAdjusted())
}

// ChatResponseCoaching answers in a coaching persona, cbt unless the persona
// query parameter names another one.
func (h *Handler) ChatResponseCoaching(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("persona")
	if name == "" {
		name = "cbt"
	}
	prompt, err := domain.Persona(name)
	if err != nil {
		Error(w, StatusFor(err), fmt.Sprintf("unknown persona %q, expected one of: %s", name, strings.Join(domain.PersonaNames(), ", ")))
		return
	}
	h.chatTurn(w, r, service.Coaching(prompt))
}

func (h *Handler) chatTurn(w http.ResponseWriter, r *http.Request, strategy service.ReplyStrategy) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Message == nil {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	name, err := userName(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reply, err := h.chat.HandleChatTurn(r.Context(), name, *req.Message, strategy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, chatResponse{Response: reply})
}

func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	lastN, err := strconv.Atoi(r.URL.Query().Get("last_n"))
	if err != nil || lastN <= 0 || lastN > config.MaxHistoryPage {
		Error(w, http.StatusBadRequest, "last_n must be an integer between 1 and "+strconv.Itoa(config.MaxHistoryPage))
		return
	}

	name, err := userName(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	msgs, err := h.reports.History(r.Context(), name, lastN)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, toViews(msgs))
}

func (h *Handler) ChatStatusToday(w http.ResponseWriter, r *http.Request) {
	name, err := userName(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status, err := h.reports.TodayStatus(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, status)
}

func (h *Handler) BehaviorReport(w http.ResponseWriter, r *http.Request) {
	name, err := userName(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := h.reports.BehaviorReport(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, report)
}
