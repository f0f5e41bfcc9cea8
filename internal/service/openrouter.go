package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/set-night/mindcoach/internal/config"
	"github.com/set-night/mindcoach/internal/domain"
	"github.com/shopspring/decimal"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1"

type OpenRouterOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float64
	SiteURL     string
	AppName     string
	HTTPClient  *http.Client
}

// OpenRouterService is a Completer backed by the OpenRouter chat-completions
// API. It also lists the provider's models for the HTTP API.
type OpenRouterService struct {
	opts   OpenRouterOptions
	client *http.Client
	cache  *ModelsCache
}

func NewOpenRouterService(opts OpenRouterOptions) *OpenRouterService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultOpenRouterURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: config.RequestTimeout}
	}
	return &OpenRouterService{
		opts:   opts,
		client: client,
		cache:  NewModelsCache(config.ModelCacheDuration),
	}
}

// ProviderError is a non-2xx answer from OpenRouter.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	switch e.Status {
	case http.StatusTooManyRequests:
		return "openrouter: rate limited (429)"
	case http.StatusServiceUnavailable:
		return "openrouter: service unavailable (503)"
	}
	return fmt.Sprintf("openrouter: status %d: %s", e.Status, e.Body)
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Transforms  []string      `json:"transforms,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type completionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int             `json:"prompt_tokens"`
		CompletionTokens int             `json:"completion_tokens"`
		Cost             decimal.Decimal `json:"cost"`
		TotalCost        decimal.Decimal `json:"total_cost"`
	} `json:"usage"`
}

type modelsResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Description   string `json:"description"`
		ContextLength int    `json:"context_length"`
		Pricing       struct {
			Prompt     string `json:"prompt"`
			Completion string `json:"completion"`
		} `json:"pricing"`
		TopProvider struct {
			ContextLength int `json:"context_length"`
		} `json:"top_provider"`
	} `json:"data"`
}

func toWire(msgs []domain.ChatMessage) []wireMessage {
	out := make([]wireMessage, len(msgs))
	for i, m := range msgs {
		role := string(m.Role)
		if m.Role == domain.RoleAI {
			role = "assistant"
		}
		out[i] = wireMessage{Role: role, Content: m.Text}
	}
	return out
}

// Gemini models reject an explicit temperature.
func supportsTemperature(model string) bool {
	return !strings.Contains(strings.ToLower(model), "gemini")
}

// Complete implements Completer with the configured model.
func (s *OpenRouterService) Complete(ctx context.Context, messages []domain.ChatMessage) (*Completion, error) {
	req := completionRequest{
		Model:      s.opts.Model,
		Messages:   toWire(messages),
		Transforms: []string{"middle-out"},
	}
	if supportsTemperature(s.opts.Model) {
		req.Temperature = s.opts.Temperature
	}

	var resp completionResponse
	if err := s.do(ctx, http.MethodPost, "/chat/completions", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, domain.ErrEmptyCompletion
	}

	c := &Completion{
		Text:             resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Cost:             resp.Usage.Cost,
	}
	if c.Model == "" {
		c.Model = s.opts.Model
	}
	if c.Cost.IsZero() {
		c.Cost = resp.Usage.TotalCost
	}
	return c, nil
}

// ListModels returns the provider catalogue with prices per 1M tokens.
// Results are cached for config.ModelCacheDuration.
func (s *OpenRouterService) ListModels(ctx context.Context) ([]domain.AIModel, error) {
	if cached := s.cache.Get(); cached != nil {
		return cached, nil
	}

	var resp modelsResponse
	if err := s.do(ctx, http.MethodGet, "/models", nil, &resp); err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	out := make([]domain.AIModel, 0, len(resp.Data))
	for _, m := range resp.Data {
		ctxLen := m.ContextLength
		if m.TopProvider.ContextLength > 0 {
			ctxLen = m.TopProvider.ContextLength
		}
		out = append(out, domain.AIModel{
			ID:              m.ID,
			Name:            m.Name,
			Description:     m.Description,
			PromptPrice:     perMillion(m.Pricing.Prompt),
			CompletionPrice: perMillion(m.Pricing.Completion),
			ContextLength:   ctxLen,
		})
	}

	s.cache.Set(out)
	return out, nil
}

// perMillion converts a per-token price string; unparsable prices count as free.
func perMillion(perToken string) float64 {
	d, err := decimal.NewFromString(perToken)
	if err != nil {
		return 0
	}
	return d.Shift(6).InexactFloat64()
}

func (s *OpenRouterService) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.opts.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+s.opts.APIKey)
	if s.opts.SiteURL != "" {
		req.Header.Set("HTTP-Referer", s.opts.SiteURL)
	}
	if s.opts.AppName != "" {
		req.Header.Set("X-Title", s.opts.AppName)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProviderError{Status: resp.StatusCode, Body: snippet(string(raw), 200)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func snippet(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
