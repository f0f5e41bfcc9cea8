package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/set-night/mindcoach/internal/domain"
	"github.com/shopspring/decimal"
)

func TestOpenRouter_Complete(t *testing.T) {
	var got completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		if r.Header.Get("X-Title") != "chatbot" || r.Header.Get("HTTP-Referer") != "https://example.com" {
			t.Errorf("missing attribution headers")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"openai/gpt-3.5-turbo","choices":[{"message":{"content":"hello"}}],"usage":{"prompt_tokens":7,"completion_tokens":2,"cost":0.25}}`))
	}))
	defer srv.Close()

	svc := NewOpenRouterService(OpenRouterOptions{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/",
		Model:   "openai/gpt-3.5-turbo",
		SiteURL: "https://example.com",
		AppName: "chatbot",
	})

	at := time.Now()
	c, err := svc.Complete(context.Background(), []domain.ChatMessage{
		domain.NewSystemMessage("be kind", at),
		domain.NewUserMessage("hi", at),
		domain.NewAIReply("hey", at),
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.Text != "hello" || c.PromptTokens != 7 || c.CompletionTokens != 2 {
		t.Errorf("unexpected completion: %+v", c)
	}
	if !c.Cost.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("expected cost 0.25, got %s", c.Cost)
	}

	wantRoles := []string{"system", "user", "assistant"}
	if len(got.Messages) != len(wantRoles) {
		t.Fatalf("expected %d messages, got %d", len(wantRoles), len(got.Messages))
	}
	for i, role := range wantRoles {
		if got.Messages[i].Role != role {
			t.Errorf("message %d: expected role %s, got %s", i, role, got.Messages[i].Role)
		}
	}
	if got.Model != "openai/gpt-3.5-turbo" {
		t.Errorf("unexpected model %q", got.Model)
	}
	if len(got.Transforms) != 1 || got.Transforms[0] != "middle-out" {
		t.Errorf("unexpected transforms %v", got.Transforms)
	}
}

func TestOpenRouter_GeminiSkipsTemperature(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	temp := 0.7
	svc := NewOpenRouterService(OpenRouterOptions{BaseURL: srv.URL, Model: "google/gemini-pro", Temperature: &temp})
	c, err := svc.Complete(context.Background(), []domain.ChatMessage{domain.NewUserMessage("hi", time.Now())})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got["temperature"]; ok {
		t.Error("temperature must not be sent to gemini models")
	}
	if c.Model != "google/gemini-pro" {
		t.Errorf("expected configured model as fallback, got %q", c.Model)
	}
}

func TestOpenRouter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`, "429"},
		{"unavailable", http.StatusServiceUnavailable, `{}`, "503"},
		{"bad gateway", http.StatusBadGateway, `upstream exploded`, "upstream exploded"},
		{"malformed", http.StatusOK, `not json`, "parse response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			svc := NewOpenRouterService(OpenRouterOptions{BaseURL: srv.URL, Model: "m"})
			_, err := svc.Complete(context.Background(), []domain.ChatMessage{domain.NewUserMessage("hi", time.Now())})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
			var perr *ProviderError
			if isStatus := tt.status != http.StatusOK; errors.As(err, &perr) != isStatus {
				t.Errorf("ProviderError match = %v for status %d", !isStatus, tt.status)
			} else if isStatus && perr.Status != tt.status {
				t.Errorf("ProviderError status = %d", perr.Status)
			}
		})
	}
}

func TestOpenRouter_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	svc := NewOpenRouterService(OpenRouterOptions{BaseURL: srv.URL, Model: "m"})
	_, err := svc.Complete(context.Background(), []domain.ChatMessage{domain.NewUserMessage("hi", time.Now())})
	if !errors.Is(err, domain.ErrEmptyCompletion) {
		t.Errorf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestOpenRouter_ListModelsCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"data":[{"id":"a/free","name":"Free","pricing":{"prompt":"0","completion":"0"},"context_length":4096},{"id":"b/paid","name":"Paid","pricing":{"prompt":"0.000001","completion":"0.000002"},"context_length":8192,"top_provider":{"context_length":16384}}]}`))
	}))
	defer srv.Close()

	svc := NewOpenRouterService(OpenRouterOptions{BaseURL: srv.URL})
	for i := 0; i < 2; i++ {
		models, err := svc.ListModels(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(models) != 2 {
			t.Fatalf("expected 2 models, got %d", len(models))
		}
		if !models[0].IsFree() || models[1].IsFree() {
			t.Errorf("unexpected pricing: %+v", models)
		}
		if models[1].ContextLength != 16384 {
			t.Errorf("expected top provider context length, got %d", models[1].ContextLength)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected one upstream call, got %d", hits.Load())
	}
}
