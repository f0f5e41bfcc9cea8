package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Server
	Port int `env:"PORT" envDefault:"8000"`

	// Storage: memory, postgres or sqlite
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	DatabaseURL    string `env:"DATABASE_URL"`
	DBMaxConns     int32  `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns     int32  `env:"DB_MIN_CONNS" envDefault:"2"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"./data/chat.db"`

	// LLM: OpenRouter
	OpenRouterKey     string   `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string   `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterModel   string   `env:"OPENROUTER_MODEL" envDefault:"openai/gpt-3.5-turbo"`
	Temperature       *float64 `env:"OPENROUTER_TEMPERATURE"`
	SiteURL           string   `env:"SITE_URL"`
	AppName           string   `env:"APP_NAME" envDefault:"chatbot"`
	UseMockLLM        bool     `env:"USE_MOCK_LLM" envDefault:"false"`

	// Telegram bot, disabled when the token is empty
	BotToken           string `env:"BOT_TOKEN"`
	BotDefaultMode     string `env:"BOT_DEFAULT_MODE" envDefault:"cbt"`
	DropPendingUpdates bool   `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Per-user turn serialization: none, local or redis.
	// Anything but none changes the source behavior, where two concurrent
	// turns for one user may both pass the rate limits.
	TurnLock string `env:"TURN_LOCK" envDefault:"none"`
	RedisURL string `env:"REDIS_URL"`

	// Logging
	LogLevel            string `env:"LOG_LEVEL" envDefault:"info"`
	LogTelegramChatID   int64  `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError       int    `env:"LOG_TOPIC_ERROR"`
	LogTopicRateLimited int    `env:"LOG_TOPIC_RATE_LIMITED"`

	// Zone whose midnight resets the daily limit
	Timezone string `env:"TIMEZONE" envDefault:"Local"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field requirements env tags cannot express.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "memory", "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.StorageBackend == "sqlite" && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH cannot be empty")
	}

	if !c.UseMockLLM && c.OpenRouterKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required unless USE_MOCK_LLM is set")
	}

	switch c.TurnLock {
	case "none", "local":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for TURN_LOCK=redis")
		}
	default:
		return fmt.Errorf("unknown TURN_LOCK %q", c.TurnLock)
	}

	if c.TelegramEnabled() && !slices.Contains(BotModes, c.BotDefaultMode) {
		return fmt.Errorf("unknown BOT_DEFAULT_MODE %q, expected one of %s", c.BotDefaultMode, strings.Join(BotModes, ", "))
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone; "Local" and "" mean the process zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) TelegramEnabled() bool {
	return c.BotToken != ""
}
