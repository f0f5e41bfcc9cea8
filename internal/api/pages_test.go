package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/set-night/mindcoach/internal/domain"
	"github.com/set-night/mindcoach/internal/repository"
)

func postForm(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func parsePage(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	doc, err := goquery.NewDocumentFromReader(w.Body)
	if err != nil {
		t.Fatalf("Failed to parse page: %v", err)
	}
	return doc
}

func messageTexts(doc *goquery.Document) []string {
	var texts []string
	doc.Find("#messages .message").Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, s.Text())
	})
	return texts
}

func TestIndexPage(t *testing.T) {
	router, _ := newTestRouter(&fakeCompleter{})

	doc := parsePage(t, do(t, router, http.MethodGet, "/", ""))
	if v, _ := doc.Find(`#history-form input[name="user_name"]`).Attr("value"); v != defaultVisitorName {
		t.Errorf("Expected default visitor name, got %q", v)
	}
	if n := doc.Find("#messages .message").Length(); n != 0 {
		t.Errorf("Expected no messages, got %d", n)
	}
}

func TestPageSendMessageAndHistory(t *testing.T) {
	llm := &fakeCompleter{reply: "What evidence supports that thought?"}
	router, _ := newTestRouter(llm)

	doc := parsePage(t, postForm(t, router, "/send-message", url.Values{
		"user_name": {"carol"},
		"message":   {"Everyone hates me"},
	}))
	texts := messageTexts(doc)
	if len(texts) != 2 || texts[0] != "Everyone hates me" || texts[1] != "What evidence supports that thought?" {
		t.Errorf("Unexpected messages: %q", texts)
	}
	if v, _ := doc.Find(`#send-form input[name="user_name"]`).Attr("value"); v != "carol" {
		t.Errorf("Expected user name carol, got %q", v)
	}
	if sent := llm.calls[0]; sent[0].Text != domain.PersonaCBT {
		t.Errorf("Expected CBT persona prompt")
	}

	doc = parsePage(t, postForm(t, router, "/get-chat-history", url.Values{"user_name": {"carol"}}))
	texts = messageTexts(doc)
	if len(texts) != 3 {
		t.Fatalf("Expected greeting plus 2 messages, got %q", texts)
	}
	if texts[0] != domain.Greeting("carol") {
		t.Errorf("Expected greeting first, got %q", texts[0])
	}
	if doc.Find("#messages .message.ai").First().Text() != domain.Greeting("carol") {
		t.Errorf("Greeting must be rendered as an ai message")
	}
}

func TestPageHistory_LastTenOnly(t *testing.T) {
	store := repository.NewMemoryStore()
	at := time.Now().Add(-48 * time.Hour)
	for i := 0; i < 8; i++ {
		d, err := domain.NewDialog(
			domain.NewUserMessage(fmt.Sprintf("q%d", i), at.Add(time.Duration(2*i)*time.Minute)),
			domain.NewAIReply(fmt.Sprintf("a%d", i), at.Add(time.Duration(2*i+1)*time.Minute)),
		)
		if err != nil {
			t.Fatal(err)
		}
		if err := store.History("dave").Append(context.Background(), d); err != nil {
			t.Fatal(err)
		}
	}
	router, _ := newTestRouterWithStore(&fakeCompleter{}, store)

	doc := parsePage(t, postForm(t, router, "/get-chat-history", url.Values{"user_name": {"dave"}}))
	texts := messageTexts(doc)
	if len(texts) != 11 {
		t.Fatalf("Expected greeting plus 10 messages, got %d", len(texts))
	}
	if texts[1] != "q3" || texts[10] != "a7" {
		t.Errorf("Expected the most recent ten messages, got %q", texts[1:])
	}
}

func TestPageForms_Invalid(t *testing.T) {
	router, _ := newTestRouter(&fakeCompleter{reply: "r"})

	tests := []struct {
		name   string
		target string
		form   url.Values
	}{
		{"history without user", "/get-chat-history", url.Values{}},
		{"history with empty user", "/get-chat-history", url.Values{"user_name": {""}}},
		{"send without message", "/send-message", url.Values{"user_name": {"erin"}}},
		{"send with repeated user", "/send-message", url.Values{"user_name": {"a", "b"}, "message": {"hi"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := postForm(t, router, tt.target, tt.form); w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}
