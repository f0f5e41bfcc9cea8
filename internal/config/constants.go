package config

import "time"

const (
	// Rate limits checked before a dialog is stored
	BurstWindow = 30 * time.Second
	BurstMax    = 3
	DailyMax    = 30

	// History shown on the chat page and in Telegram
	PageHistorySize = 10

	// Largest last_n accepted by the history endpoint
	MaxHistoryPage = 1000

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// AI request timeout
	RequestTimeout = 90 * time.Second

	// Model cache duration
	ModelCacheDuration = 1 * time.Hour

	// Redis turn lock
	TurnLockTTL      = 2 * RequestTimeout
	TurnLockPollWait = 100 * time.Millisecond

	// Request body cap for JSON endpoints
	MaxRequestBodySize = 1 << 20
)

// Reply modes a Telegram chat can select
var BotModes = []string{"plain", "advanced", "adler", "cbt"}
