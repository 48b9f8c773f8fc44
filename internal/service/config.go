// Package service содержит бизнес-логику приложения.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"monthlymix/internal/config"
	"monthlymix/internal/gateway/spotify"
	"monthlymix/internal/model"

	"go.uber.org/zap"
)

// ErrNoConfigStore возвращается, когда хранилище не поддерживает таблицу config
var ErrNoConfigStore = errors.New("config store is not available for this storage type")

// ActiveConfig учетные данные, необходимые для запуска
type ActiveConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	OwnerID      string
}

// Credentials возвращает учетные данные для клиента Spotify
func (c *ActiveConfig) Credentials() spotify.Credentials {
	return spotify.Credentials{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RefreshToken: c.RefreshToken,
	}
}

// MissingConfigError перечисляет незаполненные ключи
type MissingConfigError struct {
	Keys []string
}

func (e *MissingConfigError) Error() string {
	return "missing required configuration: " + strings.Join(e.Keys, ", ")
}

// Validate проверяет, что все ключи заполнены
func (c *ActiveConfig) Validate() error {
	var missing []string
	fields := []struct {
		key   model.ConfigKey
		value string
	}{
		{model.ConfigKeySpotifyClientID, c.ClientID},
		{model.ConfigKeySpotifyClientSecret, c.ClientSecret},
		{model.ConfigKeySpotifyRefreshToken, c.RefreshToken},
		{model.ConfigKeySpotifyOwnerID, c.OwnerID},
	}
	for _, f := range fields {
		if model.ValidateRequired(f.key.String(), f.value) != nil {
			missing = append(missing, f.key.String())
		}
	}
	if len(missing) > 0 {
		return &MissingConfigError{Keys: missing}
	}
	return nil
}

// ConfigService содержит бизнес-логику для работы с конфигурацией
type ConfigService struct {
	repo   model.ConfigRepository
	loader *config.ConfigLoader
	env    config.SpotifyConfig
	logger *zap.Logger
}

// NewConfigService создает новый сервис конфигурации. repo может быть nil,
// тогда значения берутся только из окружения.
func NewConfigService(repo model.ConfigRepository, env config.SpotifyConfig, logger *zap.Logger) *ConfigService {
	s := &ConfigService{
		repo:   repo,
		env:    env,
		logger: logger,
	}
	if repo != nil {
		s.loader = config.NewConfigLoader(s, logger)
	} else {
		s.loader = config.NewConfigLoader(nil, logger)
	}
	return s
}

// GetActiveConfig собирает учетные данные: env, затем база
func (s *ConfigService) GetActiveConfig(ctx context.Context) (*ActiveConfig, error) {
	sp := s.loader.LoadSpotifyFromDB(ctx, s.env)

	active := &ActiveConfig{
		ClientID:     sp.ClientID,
		ClientSecret: sp.ClientSecret,
		RefreshToken: sp.RefreshToken,
		OwnerID:      sp.OwnerID,
	}
	if err := active.Validate(); err != nil {
		return nil, err
	}
	return active, nil
}

// Get возвращает значение конфигурации
func (s *ConfigService) Get(ctx context.Context, key string) (string, error) {
	if s.repo == nil {
		return "", ErrNoConfigStore
	}

	cfg, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to get config %s: %w", key, err)
	}
	if cfg == nil {
		return "", fmt.Errorf("config %s not found", key)
	}

	return cfg.Value, nil
}

// Set устанавливает значение конфигурации
func (s *ConfigService) Set(ctx context.Context, key, value string) error {
	if s.repo == nil {
		return ErrNoConfigStore
	}

	if err := s.repo.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to set config %s: %w", key, err)
	}

	s.logger.Info("Config updated", zap.String("key", key))
	return nil
}

// SaveRefreshToken сохраняет новый refresh token, выданный Spotify
func (s *ConfigService) SaveRefreshToken(ctx context.Context, token string) error {
	// значение из окружения имеет приоритет, держим его в актуальном состоянии в памяти
	if s.env.RefreshToken != "" {
		s.env.RefreshToken = token
	}
	return s.Set(ctx, model.ConfigKeySpotifyRefreshToken.String(), token)
}

// GetAll возвращает всю конфигурацию, секреты скрыты
func (s *ConfigService) GetAll(ctx context.Context) ([]string, error) {
	if s.repo == nil {
		return nil, ErrNoConfigStore
	}

	configs, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all configs: %w", err)
	}

	lines := make([]string, 0, len(configs))
	for _, cfg := range configs {
		value := cfg.Value
		if model.ConfigKey(cfg.Key).IsSensitive() {
			value = "[hidden]"
		}
		lines = append(lines, fmt.Sprintf("%s=%s", cfg.Key, value))
	}
	sort.Strings(lines)

	return lines, nil
}
