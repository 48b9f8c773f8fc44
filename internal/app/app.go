package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"monthlymix/internal/config"
	"monthlymix/internal/external/telegram"
	"monthlymix/internal/service"
	"monthlymix/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App собранное приложение
type App struct {
	Config   *config.Config
	Storage  *storage.Backend
	Services *service.Services

	factory *ComponentFactory
	logger  *zap.Logger
}

// New собирает хранилище и сервисы
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	factory := NewComponentFactory(cfg, logger)

	if err := factory.CreateAppDataDirectory(); err != nil {
		return nil, err
	}

	backend, err := factory.CreateStorage(ctx)
	if err != nil {
		return nil, err
	}

	services, err := factory.CreateServices(backend)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("failed to create services: %w", err)
	}

	return &App{
		Config:   cfg,
		Storage:  backend,
		Services: services,
		factory:  factory,
		logger:   logger,
	}, nil
}

// Close освобождает ресурсы
func (a *App) Close() error {
	return a.Storage.Close()
}

// Serve запускает HTTP сервер, планировщик и Telegram бота до отмены контекста
func (a *App) Serve(ctx context.Context) error {
	api, err := a.factory.CreateTelegram()
	if err != nil {
		return err
	}

	var bot *telegram.Bot
	if api != nil {
		bot = a.factory.CreateBot(api, a.Services)
	}

	srv := a.factory.CreateServer(a.Storage, a.Services)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		return srv.Stop(context.Background())
	})

	if a.Config.ScheduleEnabled {
		if err := a.Services.Scheduler.Start(); err != nil {
			return err
		}
		a.logger.Info("Next scheduled run", zap.Time("next_run", a.Services.Scheduler.NextRun()))
		g.Go(func() error {
			<-ctx.Done()
			a.Services.Scheduler.Stop()
			return nil
		})
	}

	if bot != nil {
		g.Go(func() error {
			return a.runBot(ctx, api, bot)
		})
	}

	a.logger.Info("Monthly mix service started",
		zap.Int("http_port", a.Config.HTTPPort),
		zap.Bool("schedule_enabled", a.Config.ScheduleEnabled),
		zap.Bool("bot_enabled", bot != nil))

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runBot держит long polling и переподключается с растущей паузой
func (a *App) runBot(ctx context.Context, api *tgbotapi.BotAPI, bot *telegram.Bot) error {
	const (
		maxRestartAttempts = 10
		restartDelay       = 10 * time.Second
	)

	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: false}); err != nil {
		a.logger.Warn("Failed to delete webhook", zap.Error(err))
	}

	restartAttempts := 0
	for {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		u.AllowedUpdates = []string{"message"}
		updates := api.GetUpdatesChan(u)

		err := bot.Start(ctx, updates)
		api.StopReceivingUpdates()
		if ctx.Err() != nil {
			return nil
		}

		restartAttempts++
		a.logger.Error("Update loop error",
			zap.Error(err),
			zap.Int("restart_attempt", restartAttempts),
			zap.Int("max_attempts", maxRestartAttempts))
		if restartAttempts > maxRestartAttempts {
			return fmt.Errorf("max restart attempts reached: %w", err)
		}

		delay := time.Duration(restartAttempts) * restartDelay
		if delay > 5*time.Minute {
			delay = 5 * time.Minute
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}
