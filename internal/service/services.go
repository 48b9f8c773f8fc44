// Package service содержит бизнес-логику приложения.
package service

import (
	"context"

	"monthlymix/internal/config"
	"monthlymix/internal/extract"
	"monthlymix/internal/gateway/spotify"
	"monthlymix/internal/storage"

	"go.uber.org/zap"
)

// Services содержит все сервисы приложения
type Services struct {
	Config      *ConfigService
	Submissions *SubmissionService
	History     *HistoryService
	Mixtape     *Mixtape
	Runner      *ExclusiveRunner
	Scheduler   *Scheduler
}

// NewServices создает все сервисы поверх выбранного хранилища
func NewServices(backend *storage.Backend, cfg *config.Config, tokens *spotify.TokenCache, logger *zap.Logger) *Services {
	configService := NewConfigService(backend.Config, cfg.Spotify, logger)

	// новый refresh token сохраняем, чтобы следующий запуск его подхватил
	onRotate := func(ctx context.Context, refreshToken string) error {
		return configService.SaveRefreshToken(ctx, refreshToken)
	}

	factory := spotify.NewFactory(spotify.Config{
		APIURL:                cfg.Spotify.APIURL,
		TokenURL:              cfg.Spotify.TokenURL,
		MaxRateRetries:        cfg.Spotify.MaxRateRetries,
		Timeout:               cfg.HTTPClientConfig.Timeout,
		MaxIdleConns:          cfg.HTTPClientConfig.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.HTTPClientConfig.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.HTTPClientConfig.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.HTTPClientConfig.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.HTTPClientConfig.ResponseHeaderTimeout,
	}, tokens, onRotate, logger)

	extractOpts := extract.Options{
		MinTextLength:  cfg.Pipeline.TextMinLength,
		MinQueryLength: cfg.Pipeline.TextMinQueryLength,
	}

	historyService := NewHistoryService(backend.Playlists, backend.Runs, logger)

	mixtape := NewMixtape(configService, backend.Links, factory.New, historyService, MixtapeOptions{
		RequestDelay:   cfg.Pipeline.RequestDelay,
		BatchPause:     cfg.Pipeline.BatchPause,
		SearchLimit:    cfg.Pipeline.SearchLimit,
		PlaylistPrefix: cfg.Pipeline.PlaylistPrefix,
		Extract:        extractOpts,
	}, logger)

	runner := NewExclusiveRunner(mixtape)

	return &Services{
		Config:      configService,
		Submissions: NewSubmissionService(backend.Links, extractOpts, logger),
		History:     historyService,
		Mixtape:     mixtape,
		Runner:      runner,
		Scheduler:   NewScheduler(runner, cfg.ScheduleCron, logger),
	}
}
