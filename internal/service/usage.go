package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/set-night/mindcoach/internal/domain"
	"github.com/shopspring/decimal"
)

// UsageSnapshot is the process-wide provider usage since start.
type UsageSnapshot struct {
	Requests         int64           `json:"requests"`
	Failures         int64           `json:"failures"`
	PromptTokens     int64           `json:"prompt_tokens"`
	CompletionTokens int64           `json:"completion_tokens"`
	Cost             decimal.Decimal `json:"cost"`
}

type UsageMeter struct {
	mu   sync.Mutex
	snap UsageSnapshot
}

func NewUsageMeter() *UsageMeter {
	return &UsageMeter{snap: UsageSnapshot{Cost: decimal.Zero}}
}

func (m *UsageMeter) Record(c *Completion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Requests++
	m.snap.PromptTokens += int64(c.PromptTokens)
	m.snap.CompletionTokens += int64(c.CompletionTokens)
	m.snap.Cost = m.snap.Cost.Add(c.Cost)
}

func (m *UsageMeter) RecordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Requests++
	m.snap.Failures++
}

func (m *UsageMeter) Snapshot() UsageSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// MeteredCompleter records every call to next in meter.
type MeteredCompleter struct {
	next  Completer
	meter *UsageMeter
}

func NewMeteredCompleter(next Completer, meter *UsageMeter) *MeteredCompleter {
	return &MeteredCompleter{next: next, meter: meter}
}

func (m *MeteredCompleter) Complete(ctx context.Context, messages []domain.ChatMessage) (*Completion, error) {
	c, err := m.next.Complete(ctx, messages)
	if err != nil {
		m.meter.RecordFailure()
		return nil, err
	}
	m.meter.Record(c)
	slog.Debug("completion",
		"model", c.Model,
		"prompt_tokens", c.PromptTokens,
		"completion_tokens", c.CompletionTokens,
		"cost", c.Cost.String(),
	)
	return c, nil
}
