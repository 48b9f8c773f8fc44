package storage

import (
	"context"
	"fmt"
	"strings"

	"monthlymix/internal/config"
	"monthlymix/internal/model"

	"go.uber.org/zap"
)

// Backend набор репозиториев выбранного хранилища.
// Для bbolt доступны только ссылки, остальные поля nil.
type Backend struct {
	Links     model.LinkRepository
	Config    model.ConfigRepository
	Playlists model.PlaylistRepository
	Runs      model.RunRepository

	close func() error
	ping  func(ctx context.Context) error
}

// PingContext проверяет доступность базы. Для bbolt всегда nil.
func (b *Backend) PingContext(ctx context.Context) error {
	if b == nil || b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

// Close освобождает ресурсы хранилища
func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// Open создает хранилище по типу из конфигурации
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	typ := strings.TrimSpace(strings.ToLower(cfg.StorageType))

	switch typ {
	case config.StoragePostgres:
		db, err := NewPostgres(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		return sqlBackend(ctx, db)
	case config.StorageSQLite:
		db, err := NewSQLite(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return sqlBackend(ctx, db)
	case config.StorageBolt:
		store, err := NewBoltLinkStore(cfg.BoltPath, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{Links: store, close: store.Close}, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

// NewSQLBackend собирает Backend поверх bun базы
func NewSQLBackend(ctx context.Context, db *SQL) (*Backend, error) {
	return sqlBackend(ctx, db)
}

func sqlBackend(ctx context.Context, db *SQL) (*Backend, error) {
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Backend{
		Links:     db.GetLinkRepository(),
		Config:    db.GetConfigRepository(),
		Playlists: db.GetPlaylistRepository(),
		Runs:      db.GetRunRepository(),
		close:     db.Close,
		ping:      db.GetDB().PingContext,
	}, nil
}
