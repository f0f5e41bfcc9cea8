package service

import (
	"context"

	"github.com/set-night/mindcoach/internal/domain"
	"github.com/shopspring/decimal"
)

// Completion is one reply from the completion provider.
type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Cost             decimal.Decimal
}

// Completer is the LLM completion provider. Errors are opaque to callers and
// are never retried.
type Completer interface {
	Complete(ctx context.Context, messages []domain.ChatMessage) (*Completion, error)
}

// complete returns only the reply text.
func complete(ctx context.Context, llm Completer, messages []domain.ChatMessage) (string, error) {
	c, err := llm.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	return c.Text, nil
}
