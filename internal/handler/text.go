package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mindcoach/internal/domain"
	"github.com/set-night/mindcoach/internal/middleware"
	"github.com/set-night/mindcoach/internal/telegram"
)

// HandleText answers a text message in the chat's selected mode.
func (h *Handler) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || strings.HasPrefix(update.Message.Text, "/") {
		return
	}
	userName := middleware.GetUserName(ctx)
	if userName == "" {
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID

	strategy, err := h.modes.Strategy(chatID)
	if err != nil {
		h.replyError(ctx, b, chatID, userName, err, "resolve mode")
		return
	}

	stopTyping := telegram.StartTyping(ctx, b, chatID)
	reply, err := h.chat.HandleChatTurn(ctx, userName, msg.Text, strategy)
	stopTyping()
	if err != nil {
		h.replyError(ctx, b, chatID, userName, err, "chat turn")
		return
	}

	if err := telegram.SendLongMessage(ctx, b, chatID, reply, &msg.ID); err != nil {
		slog.Error("send reply", "error", err, "chat_id", chatID)
		h.tgLogger.LogError(err, fmt.Sprintf("send reply to %s", userName))
	}
}

// replyError tells the user what went wrong in terms they can act on.
func (h *Handler) replyError(ctx context.Context, b *bot.Bot, chatID int64, userName string, err error, op string) {
	var text string
	switch {
	case domain.IsTooManyRequests(err):
		text = "⏳ " + err.Error()
		h.tgLogger.LogRateLimited(userName, err)
	case errors.Is(err, domain.ErrInvalidInput):
		text = "⚠️ I couldn't use that message: " + err.Error()
	default:
		slog.Error(op, "error", err, "user", userName)
		h.tgLogger.LogError(err, fmt.Sprintf("%s for %s", op, userName))
		text = "❌ Something went wrong. Please try again later."
	}

	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
}
