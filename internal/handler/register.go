package handler

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Register registers all command and callback handlers on the bot.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/mode", bot.MatchTypePrefix, h.handleMode)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/history", bot.MatchTypePrefix, h.handleHistory)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypePrefix, h.handleStatus)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/report", bot.MatchTypePrefix, h.handleReport)

	// Callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, modeCallbackPrefix, bot.MatchTypePrefix, h.handleModeCallback)
}

// Default receives every update no registered handler matched. Plain text
// becomes a chat turn; unknown commands get the help text.
func (h *Handler) Default(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	if strings.HasPrefix(update.Message.Text, "/") {
		h.sendHelp(ctx, b, update.Message.Chat.ID)
		return
	}
	h.HandleText(ctx, b, update)
}
