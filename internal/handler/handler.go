package handler

import (
	"github.com/go-telegram/bot"
	"github.com/set-night/mindcoach/internal/config"
	"github.com/set-night/mindcoach/internal/service"
	"github.com/set-night/mindcoach/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot      *bot.Bot
	cfg      *config.Config
	chat     *service.ChatService
	reports  *service.ReportService
	modes    *ModeStore
	tgLogger *telegram.TelegramLogger
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot      *bot.Bot
	Cfg      *config.Config
	Chat     *service.ChatService
	Reports  *service.ReportService
	Modes    *ModeStore
	TgLogger *telegram.TelegramLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	modes := deps.Modes
	if modes == nil {
		modes = NewModeStore(deps.Cfg.BotDefaultMode)
	}
	return &Handler{
		bot:      deps.Bot,
		cfg:      deps.Cfg,
		chat:     deps.Chat,
		reports:  deps.Reports,
		modes:    modes,
		tgLogger: deps.TgLogger,
	}
}
