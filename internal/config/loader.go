package config

import (
	"context"

	"go.uber.org/zap"
)

// ConfigServiceInterface определяет интерфейс для чтения конфигурации из базы
type ConfigServiceInterface interface {
	Get(ctx context.Context, key string) (string, error)
}

// ConfigLoader представляет загрузчик конфигурации
type ConfigLoader struct {
	configService ConfigServiceInterface
	logger        *zap.Logger
}

// NewConfigLoader создает новый загрузчик конфигурации
func NewConfigLoader(configService ConfigServiceInterface, logger *zap.Logger) *ConfigLoader {
	return &ConfigLoader{
		configService: configService,
		logger:        logger,
	}
}

// LoadConfigValue загружает значение конфигурации с приоритетом: env > база данных
func (cl *ConfigLoader) LoadConfigValue(ctx context.Context, envValue, configKey string) string {
	if envValue != "" {
		cl.logger.Debug("Using config value from environment", zap.String("key", configKey))
		return envValue
	}

	if cl.configService == nil {
		return ""
	}

	dbValue, err := cl.configService.Get(ctx, configKey)
	if err != nil {
		cl.logger.Debug("Failed to load config value from database", zap.String("key", configKey), zap.Error(err))
		return ""
	}
	if dbValue != "" {
		// секреты в лог не пишем
		cl.logger.Info("Loaded config value from database", zap.String("key", configKey))
	}
	return dbValue
}

// LoadConfigValueWithSetter загружает значение конфигурации и устанавливает его через setter
func (cl *ConfigLoader) LoadConfigValueWithSetter(ctx context.Context, envValue, configKey string, setter func(string)) string {
	value := cl.LoadConfigValue(ctx, envValue, configKey)
	if value != "" {
		setter(value)
	}
	return value
}

// LoadSpotifyFromDB дополняет учетные данные Spotify значениями из базы
func (cl *ConfigLoader) LoadSpotifyFromDB(ctx context.Context, sp SpotifyConfig) SpotifyConfig {
	cl.LoadConfigValueWithSetter(ctx, sp.ClientID, KeySpotifyClientID, func(value string) {
		sp.ClientID = value
	})

	cl.LoadConfigValueWithSetter(ctx, sp.ClientSecret, KeySpotifyClientSecret, func(value string) {
		sp.ClientSecret = value
	})

	cl.LoadConfigValueWithSetter(ctx, sp.RefreshToken, KeySpotifyRefreshToken, func(value string) {
		sp.RefreshToken = value
	})

	cl.LoadConfigValueWithSetter(ctx, sp.OwnerID, KeySpotifyOwnerID, func(value string) {
		sp.OwnerID = value
	})

	return sp
}

// Ключи учетных данных в таблице config
const (
	KeySpotifyClientID     = "SPOTIFY_CLIENT_ID"
	KeySpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
	KeySpotifyRefreshToken = "SPOTIFY_REFRESH_TOKEN"
	KeySpotifyOwnerID      = "SPOTIFY_OWNER_ID"
)
