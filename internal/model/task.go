// Package model содержит модели данных приложения.
package model

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// TriggerType представляет источник запуска
type TriggerType string

const (
	TriggerSchedule TriggerType = "schedule"
	TriggerHTTP     TriggerType = "http"
	TriggerCLI      TriggerType = "cli"
	TriggerBot      TriggerType = "bot"
)

// IsValid проверяет валидность источника запуска
func (t TriggerType) IsValid() bool {
	switch t {
	case TriggerSchedule, TriggerHTTP, TriggerCLI, TriggerBot:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление источника
func (t TriggerType) String() string {
	return string(t)
}

// RunRecord представляет журнал запусков сборки плейлиста
type RunRecord struct {
	bun.BaseModel `bun:"table:runs"`

	ID          int         `bun:"id,pk,autoincrement" json:"id"`
	RunID       string      `bun:"run_id,unique,notnull" json:"run_id"`
	MonthKey    string      `bun:"month_key,notnull" json:"month_key"`
	Trigger     TriggerType `bun:"trigger,notnull" json:"trigger"`
	Success     bool        `bun:"success,notnull" json:"success"`
	Message     string      `bun:"message" json:"message"`
	PlaylistID  string      `bun:"playlist_id" json:"playlist_id,omitempty"`
	TracksAdded int         `bun:"tracks_added,notnull,default:0" json:"tracks_added"`
	ErrorCount  int         `bun:"error_count,notnull,default:0" json:"error_count"`
	DurationMS  int64       `bun:"duration_ms,notnull,default:0" json:"duration_ms"`
	StartedAt   time.Time   `bun:"started_at,notnull" json:"started_at"`
}

// Validate проверяет валидность записи
func (r *RunRecord) Validate() error {
	var errors ValidationErrors

	if r.RunID == "" {
		errors = append(errors, ValidationError{Field: "run_id", Message: "run_id is required"})
	}

	if err := ValidateMonthKey("month_key", r.MonthKey); err != nil {
		errors = append(errors, err.(ValidationError))
	}

	if !r.Trigger.IsValid() {
		errors = append(errors, ValidationError{Field: "trigger", Message: "invalid trigger"})
	}

	if len(errors) > 0 {
		return errors
	}

	return nil
}

// RunRepository определяет интерфейс для журнала запусков
type RunRepository interface {
	Create(ctx context.Context, record *RunRecord) error
	Latest(ctx context.Context, limit int) ([]RunRecord, error)
}
