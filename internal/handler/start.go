package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mindcoach/internal/domain"
)

const helpText = "📋 *Commands:*\n" +
	"/mode — Choose how I reply\n" +
	"/history — Our last messages\n" +
	"/status — Messages exchanged today\n" +
	"/report — Summary of what you talk about\n\n" +
	"Just send a message to start talking!"

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	name := "there"
	if update.Message.From != nil && update.Message.From.FirstName != "" {
		name = update.Message.From.FirstName
	}
	current := h.modes.Get(chatID)

	text := fmt.Sprintf("%s\n\n%s\n\nCurrent mode: %s", domain.Greeting(name), helpText, modeLabel(current))
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: modeKeyboard(current),
	})
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        text,
			ReplyMarkup: modeKeyboard(current),
		})
	}
}

func (h *Handler) sendHelp(ctx context.Context, b *bot.Bot, chatID int64) {
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      helpText,
		ParseMode: models.ParseModeMarkdownV1,
	})
}
