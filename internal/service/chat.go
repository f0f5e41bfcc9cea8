package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/set-night/mindcoach/internal/domain"
)

const maxUserNameLen = 128

type ChatService struct {
	users  *UserService
	llm    Completer
	locker TurnLocker
	now    func() time.Time
}

func NewChatService(users *UserService, llm Completer, locker TurnLocker) *ChatService {
	if locker == nil {
		locker = NoopTurnLocker{}
	}
	return &ChatService{users: users, llm: llm, locker: locker, now: time.Now}
}

// HandleChatTurn answers one message end to end. History is read once, before
// the new message exists in the store, so the rate limits count only earlier
// turns. AddDialog is the only write; a provider error or a rate-limit
// rejection leaves the history untouched.
func (s *ChatService) HandleChatTurn(ctx context.Context, userName, text string, strategy ReplyStrategy) (string, error) {
	if err := ValidateUserName(userName); err != nil {
		return "", err
	}
	if err := ValidateMessage(text); err != nil {
		return "", err
	}
	if err := strategy.Validate(); err != nil {
		return "", err
	}

	turnID := uuid.NewString()
	log := slog.With("turn_id", turnID, "user", userName, "strategy", strategy.Kind().String())

	release, err := s.locker.Acquire(ctx, userName)
	if err != nil {
		return "", fmt.Errorf("acquire turn lock: %w", err)
	}
	defer release()

	user := s.users.Get(userName)

	history, err := user.History.Find(ctx, domain.FindQuery{})
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}

	userMessage := domain.NewUserMessage(text, s.now().UTC())
	working := append(slices.Clone(history), userMessage)

	replyText, err := strategy.Generate(ctx, working, s.llm)
	if err != nil {
		log.Error("generate reply", "error", err)
		return "", fmt.Errorf("generate reply: %w", err)
	}

	dialog, err := domain.NewDialog(userMessage, domain.NewAIReply(replyText, s.now().UTC()))
	if err != nil {
		return "", err
	}

	if err := user.AddDialog(ctx, dialog); err != nil {
		if domain.IsTooManyRequests(err) {
			log.Info("turn rejected", "error", err)
		}
		return "", err
	}

	log.Debug("turn completed", "history_len", len(history), "reply_len", len(replyText))
	return replyText, nil
}

func ValidateUserName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: user name is empty", domain.ErrInvalidInput)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: user name is not valid UTF-8", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxUserNameLen {
		return fmt.Errorf("%w: user name longer than %d characters", domain.ErrInvalidInput, maxUserNameLen)
	}
	return nil
}

func ValidateMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: message is not valid UTF-8", domain.ErrInvalidInput)
	}
	return nil
}
