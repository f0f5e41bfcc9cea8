package service

import (
	"context"
	"slices"
	"sync"

	"github.com/set-night/mindcoach/internal/domain"
)

// scriptedCompleter returns replies in order and records every request.
type scriptedCompleter struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   [][]domain.ChatMessage
}

func (s *scriptedCompleter) Complete(_ context.Context, messages []domain.ChatMessage) (*Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, slices.Clone(messages))
	if s.err != nil {
		return nil, s.err
	}
	text := "ok"
	if len(s.replies) > 0 {
		text, s.replies = s.replies[0], s.replies[1:]
	}
	return &Completion{Text: text}, nil
}
