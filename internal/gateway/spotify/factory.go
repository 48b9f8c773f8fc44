package spotify

import "go.uber.org/zap"

// Factory создает клиентов с общим на процесс кэшем токенов.
// Учетные данные загружаются на каждом запуске, кэш переживает запуски.
type Factory struct {
	cfg      Config
	cache    *TokenCache
	onRotate RotateFunc
	logger   *zap.Logger
}

// NewFactory создает фабрику клиентов
func NewFactory(cfg Config, cache *TokenCache, onRotate RotateFunc, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:      cfg,
		cache:    cache,
		onRotate: onRotate,
		logger:   logger,
	}
}

// New создает клиента для учетных данных
func (f *Factory) New(creds Credentials) Interface {
	client := NewClient(f.cfg, creds, f.cache, f.logger)
	if f.onRotate != nil {
		client.OnRefreshTokenRotated(f.onRotate)
	}
	return client
}
