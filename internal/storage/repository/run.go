package repository

import (
	"context"
	"fmt"

	"monthlymix/internal/model"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// RunRepository хранит журнал запусков
type RunRepository struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewRunRepository создает новый репозиторий журнала запусков
func NewRunRepository(db *bun.DB, logger *zap.Logger) *RunRepository {
	return &RunRepository{
		db:     db,
		logger: logger,
	}
}

// Create сохраняет запись о запуске
func (r *RunRepository) Create(ctx context.Context, record *model.RunRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid run record: %w", err)
	}

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create run record: %w", err)
	}

	return nil
}

// Latest возвращает последние запуски, новые первыми
func (r *RunRepository) Latest(ctx context.Context, limit int) ([]model.RunRecord, error) {
	records := make([]model.RunRecord, 0)

	err := r.db.NewSelect().
		Model(&records).
		Order("started_at DESC", "id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest runs: %w", err)
	}

	return records, nil
}
