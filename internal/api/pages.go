package api

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/set-night/mindcoach/internal/config"
	"github.com/set-night/mindcoach/internal/domain"
	"github.com/set-night/mindcoach/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

// defaultVisitorName is shown before a visitor enters a name.
const defaultVisitorName = "来访者"

type pageData struct {
	UserName string
	Messages []messageView
}

type pageRenderer struct {
	index *template.Template
}

func newPageRenderer() *pageRenderer {
	return &pageRenderer{
		index: template.Must(template.ParseFS(templatesFS, "templates/index.html")),
	}
}

func (p *pageRenderer) render(w http.ResponseWriter, data pageData) {
	var buf bytes.Buffer
	if err := p.index.Execute(&buf, data); err != nil {
		slog.Error("render page", "error", err)
		Error(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// RegisterPages registers the browser chat page.
func (h *Handler) RegisterPages(r chi.Router) {
	r.Get("/", h.Index)
	r.Post("/get-chat-history", h.PageHistory)
	r.Post("/send-message", h.PageSendMessage)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, pageData{UserName: defaultVisitorName})
}

// PageHistory shows the last messages preceded by a greeting.
func (h *Handler) PageHistory(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	userName, ok := formValue(w, r, "user_name", "Invalid user name")
	if !ok {
		return
	}

	msgs, err := h.reports.History(r.Context(), userName, config.PageHistorySize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := append([]messageView{{Type: string(domain.RoleAI), Text: domain.Greeting(userName)}}, toViews(msgs)...)
	h.pages.render(w, pageData{UserName: userName, Messages: views})
}

// PageSendMessage runs a coaching turn with the CBT persona and re-renders
// the page.
func (h *Handler) PageSendMessage(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	userName, ok := formValue(w, r, "user_name", "Invalid user name")
	if !ok {
		return
	}
	message, ok := formValue(w, r, "message", "Invalid message")
	if !ok {
		return
	}

	if _, err := h.chat.HandleChatTurn(r.Context(), userName, message, service.Coaching(domain.PersonaCBT)); err != nil {
		writeError(w, r, err)
		return
	}

	msgs, err := h.reports.History(r.Context(), userName, config.PageHistorySize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.pages.render(w, pageData{UserName: userName, Messages: toViews(msgs)})
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize)
	if err := r.ParseForm(); err != nil {
		Error(w, http.StatusBadRequest, "invalid form")
		return false
	}
	return true
}

// formValue requires exactly one non-empty value for key.
func formValue(w http.ResponseWriter, r *http.Request, key, invalid string) (string, bool) {
	values, ok := r.PostForm[key]
	if !ok || len(values) != 1 || values[0] == "" {
		Error(w, http.StatusBadRequest, invalid)
		return "", false
	}
	return values[0], true
}
