package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mindcoach/internal/config"
)

// typingInterval stays under Telegram's 5s expiry for chat actions.
const typingInterval = 4 * time.Second

// SendLongMessage delivers a model reply in as many messages as needed.
// Only the first part quotes replyToID. A part that Telegram rejects as
// Markdown is resent as plain text.
func SendLongMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, replyToID *int) error {
	var reply *models.ReplyParameters
	if replyToID != nil {
		reply = &models.ReplyParameters{MessageID: *replyToID}
	}

	for i, part := range SplitMessage(FixMarkdown(text), config.MaxTelegramMessageLen) {
		if err := sendPart(ctx, b, chatID, part, reply); err != nil {
			return fmt.Errorf("send part %d: %w", i+1, err)
		}
		reply = nil
	}
	return nil
}

func sendPart(ctx context.Context, b *bot.Bot, chatID int64, text string, reply *models.ReplyParameters) error {
	params := &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            text,
		ParseMode:       models.ParseModeMarkdownV1,
		ReplyParameters: reply,
	}
	_, err := b.SendMessage(ctx, params)
	if err == nil {
		return nil
	}
	slog.Warn("markdown rejected, resending as plain text", "chat_id", chatID, "error", err)

	params.ParseMode = ""
	_, err = b.SendMessage(ctx, params)
	return err
}

// EditText replaces the text of a sent message and drops its inline keyboard.
func EditText(ctx context.Context, b *bot.Bot, chatID int64, messageID int, text string) error {
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      truncate(text, config.MaxTelegramMessageLen),
	})
	if err != nil {
		return fmt.Errorf("edit message %d: %w", messageID, err)
	}
	return nil
}

func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-1]) + "…"
}

// StartTyping keeps the typing indicator visible while a reply is generated.
// Call the returned function once the reply is ready.
func StartTyping(ctx context.Context, b *bot.Bot, chatID int64) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	action := &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping}

	go func() {
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		for {
			if _, err := b.SendChatAction(ctx, action); err != nil && ctx.Err() == nil {
				slog.Debug("typing action failed", "chat_id", chatID, "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return cancel
}
