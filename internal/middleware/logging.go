package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// slowUpdate is the processing time above which an update is logged at warn.
const slowUpdate = 30 * time.Second

// Logging returns middleware that logs update processing time.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()

			attrs := updateAttrs(update)

			next(ctx, b, update)

			elapsed := time.Since(start)
			level := slog.LevelDebug
			if elapsed > slowUpdate {
				level = slog.LevelWarn
			}
			slog.Log(ctx, level, "update processed", append(attrs, "duration", elapsed)...)
		}
	}
}

func updateAttrs(update *models.Update) []any {
	switch {
	case update.Message != nil:
		attrs := []any{"type", "message", "chat_id", update.Message.Chat.ID}
		if update.Message.From != nil {
			attrs = append(attrs, "user_id", update.Message.From.ID)
		}
		if cmd, ok := commandName(update.Message.Text); ok {
			attrs = append(attrs, "command", cmd)
		}
		return attrs
	case update.CallbackQuery != nil:
		attrs := []any{"type", "callback_query", "user_id", update.CallbackQuery.From.ID, "data", update.CallbackQuery.Data}
		if msg := update.CallbackQuery.Message.Message; msg != nil {
			attrs = append(attrs, "chat_id", msg.Chat.ID)
		}
		return attrs
	default:
		return []any{"type", "unknown"}
	}
}

// commandName returns "/mode" for "/mode cbt" and "/mode@bot cbt".
func commandName(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd, true
}
