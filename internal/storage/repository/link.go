package repository

import (
	"context"
	"fmt"
	"time"

	"monthlymix/internal/model"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// LinkRepository хранит отправки участников в таблице submitted_links
type LinkRepository struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewLinkRepository создает новый репозиторий ссылок
func NewLinkRepository(db *bun.DB, logger *zap.Logger) *LinkRepository {
	return &LinkRepository{
		db:     db,
		logger: logger,
	}
}

// GetSubmittedLinks возвращает отправки за месяц в порядке добавления
func (r *LinkRepository) GetSubmittedLinks(ctx context.Context, monthKey string) ([]string, error) {
	links := make([]string, 0)

	err := r.db.NewSelect().
		Model((*model.SubmittedLink)(nil)).
		Column("content").
		Where("month_key = ?", monthKey).
		Order("id ASC").
		Scan(ctx, &links)
	if err != nil {
		return nil, fmt.Errorf("failed to get submitted links: %w", err)
	}

	return links, nil
}

// AppendSubmittedLinks добавляет отправки за месяц
func (r *LinkRepository) AppendSubmittedLinks(ctx context.Context, monthKey string, links []string) error {
	if len(links) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]model.SubmittedLink, 0, len(links))
	for _, link := range links {
		rows = append(rows, model.SubmittedLink{
			MonthKey:  monthKey,
			Content:   link,
			CreatedAt: now,
		})
	}

	if _, err := r.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to append submitted links: %w", err)
	}

	r.logger.Debug("Appended submitted links",
		zap.String("month_key", monthKey),
		zap.Int("count", len(rows)))

	return nil
}
