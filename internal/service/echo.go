package service

import (
	"context"
	"fmt"

	"github.com/set-night/mindcoach/internal/domain"
	"github.com/shopspring/decimal"
)

// EchoCompleter answers without calling any provider. Used for local
// development when USE_MOCK_LLM is set.
type EchoCompleter struct{}

func NewEchoCompleter() *EchoCompleter {
	return &EchoCompleter{}
}

func (e *EchoCompleter) Complete(_ context.Context, messages []domain.ChatMessage) (*Completion, error) {
	last, ok := lastUserMessage(messages)
	if !ok {
		return &Completion{Text: "I'm listening.", Model: "echo", Cost: decimal.Zero}, nil
	}
	return &Completion{
		Text:  fmt.Sprintf("I hear you. You said %q. Tell me more about how that makes you feel.", last.Text),
		Model: "echo",
		Cost:  decimal.Zero,
	}, nil
}
