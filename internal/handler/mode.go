package handler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mindcoach/internal/config"
	"github.com/set-night/mindcoach/internal/domain"
	"github.com/set-night/mindcoach/internal/service"
	"github.com/set-night/mindcoach/internal/telegram"
)

const modeCallbackPrefix = "mode_"

var modeChoices = []telegram.Choice{
	{Value: "plain", Label: "💬 Plain", Data: modeCallbackPrefix + "plain"},
	{Value: "advanced", Label: "🎭 Mood-aware", Data: modeCallbackPrefix + "advanced"},
	{Value: "adler", Label: "🧭 Adler coach", Data: modeCallbackPrefix + "adler"},
	{Value: "cbt", Label: "🧠 CBT coach", Data: modeCallbackPrefix + "cbt"},
}

func modeLabel(mode string) string {
	for _, c := range modeChoices {
		if c.Value == mode {
			return c.Label
		}
	}
	return mode
}

func modeKeyboard(selected string) *models.InlineKeyboardMarkup {
	return telegram.InlineKeyboard(telegram.ChoiceRows(modeChoices, selected, 2)...)
}

// ModeStore keeps the reply mode each chat selected. Selections live in
// memory and reset to the fallback on restart.
type ModeStore struct {
	mu       sync.RWMutex
	modes    map[int64]string
	fallback string
}

func NewModeStore(fallback string) *ModeStore {
	return &ModeStore{modes: make(map[int64]string), fallback: fallback}
}

func (s *ModeStore) Get(chatID int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.modes[chatID]; ok {
		return m
	}
	return s.fallback
}

// Set selects mode for chatID. Unknown modes are rejected.
func (s *ModeStore) Set(chatID int64, mode string) error {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if !slices.Contains(config.BotModes, mode) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes[chatID] = mode
	return nil
}

// Strategy resolves the chat's mode into a reply strategy.
func (s *ModeStore) Strategy(chatID int64) (service.ReplyStrategy, error) {
	return service.ParseStrategy(s.Get(chatID))
}

func (h *Handler) handleMode(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	fields := strings.Fields(update.Message.Text)
	if len(fields) < 2 {
		current := h.modes.Get(chatID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        fmt.Sprintf("Current mode: %s\nChoose how I should reply:", modeLabel(current)),
			ReplyMarkup: modeKeyboard(current),
		})
		return
	}

	if err := h.modes.Set(chatID, fields[1]); err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ Unknown mode %q. Available: %s", fields[1], strings.Join(config.BotModes, ", ")),
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "✅ Mode set to " + modeLabel(h.modes.Get(chatID)),
	})
}

func (h *Handler) handleModeCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	msg := update.CallbackQuery.Message.Message
	if msg == nil {
		return
	}

	mode := strings.TrimPrefix(update.CallbackQuery.Data, modeCallbackPrefix)
	if err := h.modes.Set(msg.Chat.ID, mode); err != nil {
		slog.Warn("unknown mode in callback", "data", update.CallbackQuery.Data)
		return
	}

	if err := telegram.EditText(ctx, b, msg.Chat.ID, msg.ID, "✅ Mode set to "+modeLabel(mode)); err != nil {
		slog.Warn("edit mode message", "error", err)
	}
}
