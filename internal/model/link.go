// Package model содержит модели данных.
//
// Группа: ENTITIES - Основные сущности
// Содержит: SubmittedLink, LinkRepository
package model

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// SubmittedLink представляет сырую отправку участника сообщества за месяц.
// Значение может быть ссылкой или произвольным текстом.
type SubmittedLink struct {
	bun.BaseModel `bun:"table:submitted_links"`

	ID        int       `bun:"id,pk,autoincrement" json:"id"`
	MonthKey  string    `bun:"month_key,notnull" json:"month_key"`
	Content   string    `bun:"content,notnull" json:"content"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// LinkRepository хранилище отправленных ссылок, разбитое по месяцам.
// Список только дополняется.
type LinkRepository interface {
	GetSubmittedLinks(ctx context.Context, monthKey string) ([]string, error)
	AppendSubmittedLinks(ctx context.Context, monthKey string, links []string) error
}
