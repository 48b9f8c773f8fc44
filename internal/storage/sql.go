package storage

import (
	"context"
	"fmt"

	"monthlymix/internal/model"
	"monthlymix/internal/storage/repository"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"
)

// SQL представляет подключение к реляционной базе через bun
type SQL struct {
	db     *bun.DB
	logger *zap.Logger
}

func newSQL(db *bun.DB, logger *zap.Logger) *SQL {
	return &SQL{db: db, logger: logger}
}

// addDebugHook включает логирование запросов в режиме отладки
func addDebugHook(db *bun.DB, logger *zap.Logger) {
	if logger.Core().Enabled(zap.DebugLevel) {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
}

// Migrate создает недостающие таблицы и индексы
func (s *SQL) Migrate(ctx context.Context) error {
	for _, m := range model.AllModels() {
		if _, err := s.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", m, err)
		}
	}

	_, err := s.db.NewCreateIndex().
		Model((*model.SubmittedLink)(nil)).
		Index("submitted_links_month_key_idx").
		Column("month_key").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create submitted_links index: %w", err)
	}

	s.logger.Info("Database schema is up to date")
	return nil
}

// Close закрывает соединение с базой данных
func (s *SQL) Close() error {
	return s.db.Close()
}

// GetDB возвращает подключение к базе данных
func (s *SQL) GetDB() *bun.DB {
	return s.db
}

// GetConfigRepository возвращает репозиторий конфигурации
func (s *SQL) GetConfigRepository() model.ConfigRepository {
	return repository.NewConfigRepository(s.db, s.logger)
}

// GetLinkRepository возвращает репозиторий отправленных ссылок
func (s *SQL) GetLinkRepository() model.LinkRepository {
	return repository.NewLinkRepository(s.db, s.logger)
}

// GetPlaylistRepository возвращает репозиторий истории плейлистов
func (s *SQL) GetPlaylistRepository() model.PlaylistRepository {
	return repository.NewPlaylistRepository(s.db, s.logger)
}

// GetRunRepository возвращает репозиторий журнала запусков
func (s *SQL) GetRunRepository() model.RunRepository {
	return repository.NewRunRepository(s.db, s.logger)
}
