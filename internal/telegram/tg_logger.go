package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/set-night/mindcoach/internal/config"
)

const logSendTimeout = 10 * time.Second

type LogType string

const (
	LogTypeError       LogType = "error"
	LogTypeRateLimited LogType = "rateLimited"
)

// TelegramLogger mirrors operational events into a Telegram log chat,
// optionally split into forum topics. A nil logger or an unset
// LOG_TELEGRAM_CHAT_ID turns every call into a no-op.
type TelegramLogger struct {
	bot *bot.Bot
	cfg *config.Config
	now func() time.Time
}

func NewTelegramLogger(b *bot.Bot, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{bot: b, cfg: cfg, now: time.Now}
}

// Log posts message as plain text so error strings need no escaping.
func (l *TelegramLogger) Log(logType LogType, message string) {
	if l == nil || l.cfg == nil || l.cfg.LogTelegramChatID == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), logSendTimeout)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            truncate(message, config.MaxTelegramMessageLen),
		MessageThreadID: l.topicID(logType),
	})
	if err != nil {
		slog.Error("telegram log delivery failed", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, where string) {
	if l == nil {
		return
	}
	l.Log(LogTypeError, formatEvent("❌ Error", l.now(),
		"where", where,
		"error", err.Error(),
	))
}

func (l *TelegramLogger) LogRateLimited(userName string, err error) {
	if l == nil {
		return
	}
	l.Log(LogTypeRateLimited, formatEvent("⏳ Rate limited", l.now(),
		"user", userName,
		"reason", err.Error(),
	))
}

// formatEvent renders a title followed by key: value lines.
func formatEvent(title string, at time.Time, kv ...string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, "\n%s: %s", kv[i], kv[i+1])
	}
	fmt.Fprintf(&b, "\ntime: %s", at.UTC().Format(time.DateTime))
	return b.String()
}

// topicID picks the forum topic for logType; zero posts to the main thread.
func (l *TelegramLogger) topicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeRateLimited:
		return l.cfg.LogTopicRateLimited
	default:
		return 0
	}
}
