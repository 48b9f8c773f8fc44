// Package app содержит фабрику компонентов приложения.
package app

import (
	"context"
	"fmt"
	"os"

	"monthlymix/internal/config"
	"monthlymix/internal/external/feed"
	"monthlymix/internal/external/scraper"
	"monthlymix/internal/external/telegram"
	"monthlymix/internal/external/webhook"
	"monthlymix/internal/gateway/spotify"
	"monthlymix/internal/server"
	"monthlymix/internal/service"
	"monthlymix/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// ComponentFactory создает компоненты приложения
type ComponentFactory struct {
	config *config.Config
	logger *zap.Logger
}

// NewComponentFactory создает новую фабрику компонентов
func NewComponentFactory(config *config.Config, logger *zap.Logger) *ComponentFactory {
	if logger == nil {
		panic("Logger cannot be nil")
	}
	if config == nil {
		logger.Fatal("Config cannot be nil")
	}

	return &ComponentFactory{
		config: config,
		logger: logger,
	}
}

// CreateAppDataDirectory создает директорию данных приложения
func (f *ComponentFactory) CreateAppDataDirectory() error {
	dataDir := f.config.AppDataDir
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		f.logger.Error("Failed to create app data directory", zap.String("dir", dataDir), zap.Error(err))
		return fmt.Errorf("failed to create app data directory: %w", err)
	}
	f.logger.Debug("App data directory ready", zap.String("dir", dataDir))
	return nil
}

// CreateStorage открывает хранилище выбранного типа
func (f *ComponentFactory) CreateStorage(ctx context.Context) (*storage.Backend, error) {
	backend, err := storage.Open(ctx, f.config, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", f.config.StorageType, err)
	}

	f.logger.Info("Storage ready", zap.String("storage_type", f.config.StorageType))
	return backend, nil
}

// CreateServices создает сервисы и подключает источники и получателей отчетов
func (f *ComponentFactory) CreateServices(backend *storage.Backend) (*service.Services, error) {
	if backend == nil {
		return nil, fmt.Errorf("storage is required")
	}

	// кэш токенов один на процесс и переживает запуски
	services := service.NewServices(backend, f.config, spotify.NewTokenCache(), f.logger)

	sources, err := f.CreateSources()
	if err != nil {
		return nil, err
	}
	for _, source := range sources {
		services.Mixtape.AddSource(source)
	}

	if f.config.ReportWebhookURL != "" {
		services.Mixtape.AddNotifier(webhook.NewNotifier(f.config.ReportWebhookURL, f.config.HTTPClientConfig.Timeout, f.logger))
		f.logger.Info("Report webhook enabled")
	}

	return services, nil
}

// CreateSources создает дополнительные источники отправок из файла источников
func (f *ComponentFactory) CreateSources() ([]service.LinkSource, error) {
	sources, err := config.LoadSources(f.config.SourcesFile)
	if err != nil {
		return nil, err
	}

	result := make([]service.LinkSource, 0, len(sources.Feeds)+len(sources.Pages))
	for _, fs := range sources.Feeds {
		result = append(result, feed.NewSource(fs.Name, fs.URL, nil, f.logger))
	}

	scraperConfig := scraper.Config{
		HTTPClientConfig: scraper.HTTPClientConfig{
			Timeout:               f.config.HTTPClientConfig.Timeout,
			MaxIdleConns:          f.config.HTTPClientConfig.MaxIdleConns,
			MaxIdleConnsPerHost:   f.config.HTTPClientConfig.MaxIdleConnsPerHost,
			IdleConnTimeout:       f.config.HTTPClientConfig.IdleConnTimeout,
			TLSHandshakeTimeout:   f.config.HTTPClientConfig.TLSHandshakeTimeout,
			ResponseHeaderTimeout: f.config.HTTPClientConfig.ResponseHeaderTimeout,
		},
		RetryConfig:  scraper.DefaultRetryConfig(),
		RequestDelay: f.config.ScraperRequestDelay,
	}
	for _, ps := range sources.Pages {
		result = append(result, scraper.NewPageSource(scraper.Page{
			Name:     ps.Name,
			URL:      ps.URL,
			Selector: ps.Selector,
		}, scraperConfig, f.logger))
	}

	if len(result) > 0 {
		f.logger.Info("Link sources configured",
			zap.Int("feeds", len(sources.Feeds)),
			zap.Int("pages", len(sources.Pages)))
	}
	return result, nil
}

// CreateTelegram подключается к Telegram. Без BOT_TOKEN возвращает nil.
func (f *ComponentFactory) CreateTelegram() (*tgbotapi.BotAPI, error) {
	if f.config.BotToken == "" {
		f.logger.Info("BOT_TOKEN is not set, Telegram bot is disabled")
		return nil, nil
	}

	api, err := telegram.NewTelegramAPI(f.config.BotToken, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	f.logger.Info("Telegram client created", zap.String("username", api.Self.UserName))
	return api, nil
}

// CreateBot создает бота и подключает уведомления администратору
func (f *ComponentFactory) CreateBot(api *tgbotapi.BotAPI, services *service.Services) *telegram.Bot {
	wrapper := telegram.NewBotAPI(api, f.logger)

	if f.config.AdminChatID != 0 {
		services.Mixtape.AddNotifier(telegram.NewNotifier(wrapper, f.config.AdminChatID))
		f.logger.Info("Admin chat notifications enabled", zap.Int64("chat_id", f.config.AdminChatID))
	}

	return telegram.NewBot(wrapper, services.Submissions, services.Runner, services.History, f.config.AdminChatID, f.logger)
}

// CreateServer создает HTTP сервер
func (f *ComponentFactory) CreateServer(backend *storage.Backend, services *service.Services) *server.Server {
	return server.NewServer(f.config.HTTPPort, server.Deps{
		Runner:      services.Runner,
		Submissions: services.Submissions,
		History:     services.History,
		DB:          backend,
		Scheduler:   services.Scheduler,
	}, f.logger)
}
