// Package model содержит базовые модели и интерфейсы.
//
// Группа: BASE - Базовые компоненты
// Содержит: TimestampedModel, AllModels
package model

import (
	"time"
)

// TimestampedModel представляет модель с временными метками
type TimestampedModel struct {
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// AllModels возвращает модели, для которых создаются таблицы
func AllModels() []interface{} {
	return []interface{}{
		(*Config)(nil),
		(*SubmittedLink)(nil),
		(*Playlist)(nil),
		(*PlaylistTrack)(nil),
		(*RunRecord)(nil),
	}
}
