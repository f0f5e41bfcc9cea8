package middleware

import (
	"context"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type ctxKey string

const (
	UserNameKey ctxKey = "user_name"
	ChatIDKey   ctxKey = "chat_id"
)

// UserNamePrefix namespaces Telegram users in the shared history store so
// they never collide with names chosen over HTTP.
const UserNamePrefix = "tg_"

// UserName derives the history user name for a Telegram user ID.
func UserName(telegramID int64) string {
	return UserNamePrefix + strconv.FormatInt(telegramID, 10)
}

// GetUserName extracts the user name from context.
func GetUserName(ctx context.Context) string {
	name, _ := ctx.Value(UserNameKey).(string)
	return name
}

// GetChatID extracts the chat the update came from.
func GetChatID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ChatIDKey).(int64)
	return id, ok
}

// WithUser stores the resolved user name and chat in ctx.
func WithUser(ctx context.Context, userName string, chatID int64) context.Context {
	ctx = context.WithValue(ctx, UserNameKey, userName)
	return context.WithValue(ctx, ChatIDKey, chatID)
}

// UserLoader returns middleware that resolves the sender into a user name.
// Updates without a sender pass through unchanged.
func UserLoader() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var from *models.User
			var chatID int64

			if update.Message != nil {
				from = update.Message.From
				chatID = update.Message.Chat.ID
			} else if update.CallbackQuery != nil {
				from = &update.CallbackQuery.From
				if update.CallbackQuery.Message.Message != nil {
					chatID = update.CallbackQuery.Message.Message.Chat.ID
				}
			}

			if from == nil {
				next(ctx, b, update)
				return
			}

			next(WithUser(ctx, UserName(from.ID), chatID), b, update)
		}
	}
}
