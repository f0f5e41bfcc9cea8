package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mindcoach/internal/config"
	"github.com/set-night/mindcoach/internal/domain"
	"github.com/set-night/mindcoach/internal/middleware"
	"github.com/set-night/mindcoach/internal/telegram"
)

func (h *Handler) handleHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	userName := middleware.GetUserName(ctx)
	if update.Message == nil || userName == "" {
		return
	}
	chatID := update.Message.Chat.ID

	msgs, err := h.reports.History(ctx, userName, config.PageHistorySize)
	if err != nil {
		h.replyError(ctx, b, chatID, userName, err, "history")
		return
	}
	if len(msgs) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "No messages yet. Say hello!"})
		return
	}

	if err := telegram.SendLongMessage(ctx, b, chatID, formatHistory(msgs), nil); err != nil {
		h.tgLogger.LogError(err, "send history")
	}
}

func formatHistory(msgs []domain.ChatMessage) string {
	var sb strings.Builder
	for i, m := range msgs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		icon := "🤖"
		if m.Role == domain.RoleUser {
			icon = "👤"
		}
		fmt.Fprintf(&sb, "%s %s", icon, m.Text)
	}
	return sb.String()
}

func (h *Handler) handleStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	userName := middleware.GetUserName(ctx)
	if update.Message == nil || userName == "" {
		return
	}
	chatID := update.Message.Chat.ID

	status, err := h.reports.TodayStatus(ctx, userName)
	if err != nil {
		h.replyError(ctx, b, chatID, userName, err, "status")
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("📊 Your messages today: %d of %d\nIncluding replies: %d",
			status.UserCount, config.DailyMax, status.ChatCount),
	})
}

func (h *Handler) handleReport(ctx context.Context, b *bot.Bot, update *models.Update) {
	userName := middleware.GetUserName(ctx)
	if update.Message == nil || userName == "" {
		return
	}
	chatID := update.Message.Chat.ID

	stopTyping := telegram.StartTyping(ctx, b, chatID)
	report, err := h.reports.BehaviorReport(ctx, userName)
	stopTyping()
	if err != nil {
		h.replyError(ctx, b, chatID, userName, err, "behavior report")
		return
	}

	if err := telegram.SendLongMessage(ctx, b, chatID, report.Report, nil); err != nil {
		h.tgLogger.LogError(err, "send report")
	}
}
