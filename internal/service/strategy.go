package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/set-night/mindcoach/internal/domain"
)

type StrategyKind int

const (
	StrategyPlain StrategyKind = iota
	StrategySentiment
	StrategyCoaching
)

func (k StrategyKind) String() string {
	switch k {
	case StrategyPlain:
		return "plain"
	case StrategySentiment:
		return "sentiment"
	case StrategyCoaching:
		return "coaching"
	default:
		return fmt.Sprintf("StrategyKind(%d)", int(k))
	}
}

// ReplyStrategy turns a history into reply text. The set of strategies is
// closed; build one with Plain, SentimentAdjusted or Coaching.
type ReplyStrategy struct {
	kind         StrategyKind
	systemPrompt string
}

// Plain forwards the history as is.
func Plain() ReplyStrategy {
	return ReplyStrategy{kind: StrategyPlain}
}

// SentimentAdjusted classifies the last user message first and asks the model
// to match its tone.
func SentimentAdjusted() ReplyStrategy {
	return ReplyStrategy{kind: StrategySentiment}
}

// Coaching wraps the history in a persona prompt and a next-reply directive.
// An empty prompt is rejected by Validate and Generate.
func Coaching(systemPrompt string) ReplyStrategy {
	return ReplyStrategy{kind: StrategyCoaching, systemPrompt: systemPrompt}
}

// ParseStrategy maps a mode name used by the inbound surfaces to a strategy:
// "plain", "advanced" (or "sentiment"), or a persona name for coaching.
func ParseStrategy(name string) (ReplyStrategy, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "plain", "":
		return Plain(), nil
	case "advanced", "sentiment":
		return SentimentAdjusted(), nil
	default:
		prompt, err := domain.Persona(n)
		if err != nil {
			return ReplyStrategy{}, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, name)
		}
		return Coaching(prompt), nil
	}
}

func (s ReplyStrategy) Kind() StrategyKind { return s.kind }

func (s ReplyStrategy) Validate() error {
	switch s.kind {
	case StrategyPlain, StrategySentiment:
		return nil
	case StrategyCoaching:
		if strings.TrimSpace(s.systemPrompt) == "" {
			return domain.ErrEmptySystemPrompt
		}
		return nil
	default:
		return domain.ErrUnknownStrategy
	}
}

// Generate produces the reply for history. The caller's slice is never
// modified. Provider errors are returned unchanged.
func (s ReplyStrategy) Generate(ctx context.Context, history []domain.ChatMessage, llm Completer) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	switch s.kind {
	case StrategySentiment:
		return generateSentimentAdjusted(ctx, history, llm)
	case StrategyCoaching:
		return generateCoaching(ctx, history, llm, s.systemPrompt)
	default:
		return complete(ctx, llm, history)
	}
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

const sentimentPrompt = `Analyse the sentiment of the query given by the user
return the sentiment as one word: positive, negative or neutral`

// CoachingDirective asks the model for the AI's next reply.
const CoachingDirective = "提供AI的下一个回答"

// ClassifySentiment asks the provider for the sentiment of text in an isolated
// two-message exchange.
func ClassifySentiment(ctx context.Context, text string, llm Completer) (Sentiment, error) {
	now := time.Now()
	raw, err := complete(ctx, llm, []domain.ChatMessage{
		domain.NewSystemMessage(sentimentPrompt, now),
		domain.NewUserMessage(text, now),
	})
	if err != nil {
		return "", err
	}
	return ParseSentiment(raw), nil
}

// ParseSentiment picks the first sentiment word in a free-form answer and
// falls back to neutral.
func ParseSentiment(raw string) Sentiment {
	words := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		switch Sentiment(w) {
		case SentimentPositive, SentimentNegative, SentimentNeutral:
			return Sentiment(w)
		}
	}
	return SentimentNeutral
}

func generateSentimentAdjusted(ctx context.Context, history []domain.ChatMessage, llm Completer) (string, error) {
	last, ok := lastUserMessage(history)
	if !ok {
		return "", domain.ErrEmptyHistory
	}

	sentiment, err := ClassifySentiment(ctx, last.Text, llm)
	if err != nil {
		return "", err
	}

	msgs := slices.Clone(history)
	msgs = append(msgs, domain.NewSystemMessage(
		fmt.Sprintf("make the response suitable for a user with %s sentiment", sentiment),
		time.Now(),
	))
	return complete(ctx, llm, msgs)
}

func generateCoaching(ctx context.Context, history []domain.ChatMessage, llm Completer, systemPrompt string) (string, error) {
	now := time.Now()
	msgs := make([]domain.ChatMessage, 0, len(history)+2)
	msgs = append(msgs, domain.NewSystemMessage(systemPrompt, now))
	msgs = append(msgs, history...)
	msgs = append(msgs, domain.NewSystemMessage(CoachingDirective, now))
	return complete(ctx, llm, msgs)
}

func lastUserMessage(history []domain.ChatMessage) (domain.ChatMessage, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.RoleUser {
			return history[i], true
		}
	}
	return domain.ChatMessage{}, false
}
