package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	mindcoach "github.com/set-night/mindcoach"
	"github.com/set-night/mindcoach/internal/api"
	"github.com/set-night/mindcoach/internal/config"
	"github.com/set-night/mindcoach/internal/domain"
	"github.com/set-night/mindcoach/internal/handler"
	"github.com/set-night/mindcoach/internal/middleware"
	"github.com/set-night/mindcoach/internal/repository"
	"github.com/set-night/mindcoach/internal/service"
	"github.com/set-night/mindcoach/internal/telegram"
)

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Chat history storage
	histories, closeStore, err := openHistories(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Turn serialization
	locker, closeLocker, err := newTurnLocker(ctx, cfg)
	if err != nil {
		slog.Error("failed to set up turn lock", "mode", cfg.TurnLock, "error", err)
		os.Exit(1)
	}
	defer closeLocker()

	// Completion provider
	meter := service.NewUsageMeter()
	var llm service.Completer
	var modelLister api.ModelLister
	if cfg.UseMockLLM {
		slog.Info("using mock completion provider")
		llm = service.NewEchoCompleter()
	} else {
		openRouter := service.NewOpenRouterService(service.OpenRouterOptions{
			APIKey:      cfg.OpenRouterKey,
			BaseURL:     cfg.OpenRouterBaseURL,
			Model:       cfg.OpenRouterModel,
			Temperature: cfg.Temperature,
			SiteURL:     cfg.SiteURL,
			AppName:     cfg.AppName,
		})
		llm = openRouter
		modelLister = openRouter
	}
	llm = service.NewMeteredCompleter(llm, meter)

	// Initialize services
	loc, _ := cfg.Location()
	userService := service.NewUserService(histories,
		domain.WithLimits(domain.Limits{
			BurstWindow: config.BurstWindow,
			BurstMax:    config.BurstMax,
			DailyMax:    config.DailyMax,
		}),
		domain.WithLocation(loc),
	)
	chatService := service.NewChatService(userService, llm, locker)
	reportService := service.NewReportService(userService, llm)

	// Telegram bot
	if cfg.TelegramEnabled() {
		if err := startBot(ctx, cfg, chatService, reportService); err != nil {
			slog.Error("failed to start bot", "error", err)
			os.Exit(1)
		}
	}

	// HTTP server
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      api.NewRouter(api.NewHandler(chatService, reportService, modelLister, meter)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: config.RequestTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr, "storage", cfg.StorageBackend, "turn_lock", cfg.TurnLock)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	stop()

	slog.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func openHistories(ctx context.Context, cfg *config.Config) (domain.Histories, func(), error) {
	switch cfg.StorageBackend {
	case "postgres":
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL, repository.PoolOptions{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		migrationsFS, err := fs.Sub(mindcoach.MigrationsFS, "migrations")
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("load embedded migrations: %w", err)
		}
		if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		return repository.NewPostgresStore(pool), pool.Close, nil

	case "sqlite":
		store, err := repository.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Error("close sqlite", "error", err)
			}
		}, nil

	default:
		slog.Warn("using in-memory storage, history is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	}
}

func newTurnLocker(ctx context.Context, cfg *config.Config) (service.TurnLocker, func(), error) {
	switch cfg.TurnLock {
	case "local":
		return service.NewLocalTurnLocker(), func() {}, nil
	case "redis":
		l, err := service.NewRedisTurnLocker(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return l, func() { l.Close() }, nil
	default:
		return service.NoopTurnLocker{}, func() {}, nil
	}
}

// startBot creates the bot, registers handlers and starts polling in the
// background. Polling stops when ctx is cancelled.
func startBot(ctx context.Context, cfg *config.Config, chat *service.ChatService, reports *service.ReportService) error {
	// Both are set once the bot exists; the closures below read them lazily.
	var (
		h     *handler.Handler
		tgLog *telegram.TelegramLogger
	)

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(func(err error, where string) {
				tgLog.LogError(err, where)
			}),
			middleware.Logging(),
			middleware.UserLoader(),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			h.Default(ctx, b, update)
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("get bot info: %w", err)
	}

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	tgLog = telegram.NewTelegramLogger(b, cfg)
	h = handler.New(handler.Deps{
		Bot:      b,
		Cfg:      cfg,
		Chat:     chat,
		Reports:  reports,
		TgLogger: tgLog,
	})
	h.Register()

	slog.Info("starting bot", "username", me.Username, "id", me.ID, "default_mode", cfg.BotDefaultMode)
	go b.Start(ctx)
	return nil
}
