package model

import (
	"fmt"
	"strings"
	"time"
)

// TargetMonth календарный месяц, за который собирается плейлист.
// RangeEnd не входит в диапазон.
type TargetMonth struct {
	Year       int        `json:"year"`
	Month      time.Month `json:"month"`
	MonthName  string     `json:"month_name"`
	RangeStart time.Time  `json:"range_start"`
	RangeEnd   time.Time  `json:"range_end"`
	Key        string     `json:"key"`
}

// ComputeTargetMonth возвращает месяц, предшествующий now, в UTC
func ComputeTargetMonth(now time.Time) TargetMonth {
	now = now.UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return monthStarting(current.AddDate(0, -1, 0))
}

// CurrentMonth возвращает месяц, в который попадает now, в UTC.
// В него складываются новые отправки.
func CurrentMonth(now time.Time) TargetMonth {
	now = now.UTC()
	return monthStarting(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC))
}

// ParseMonthKey строит месяц из ключа YYYY-MM
func ParseMonthKey(key string) (TargetMonth, error) {
	if err := ValidateMonthKey("month", key); err != nil {
		return TargetMonth{}, err
	}
	start, err := time.ParseInLocation(MonthKeyLayout, key, time.UTC)
	if err != nil {
		return TargetMonth{}, fmt.Errorf("failed to parse month key %q: %w", key, err)
	}
	return monthStarting(start), nil
}

func monthStarting(start time.Time) TargetMonth {
	return TargetMonth{
		Year:       start.Year(),
		Month:      start.Month(),
		MonthName:  start.Month().String(),
		RangeStart: start,
		RangeEnd:   start.AddDate(0, 1, 0),
		Key:        start.Format(MonthKeyLayout),
	}
}

// Contains проверяет, что момент попадает в месяц
func (m TargetMonth) Contains(t time.Time) bool {
	return !t.Before(m.RangeStart) && t.Before(m.RangeEnd)
}

// Title возвращает название месяца вида "January 2026"
func (m TargetMonth) Title() string {
	return fmt.Sprintf("%s %d", m.MonthName, m.Year)
}

// MatchesMonth сообщает, что дата релиза относится к месяцу key.
// Дата должна иметь точность не хуже месяца, одного года недостаточно.
func MatchesMonth(date, key string) bool {
	return len(date) >= 7 && strings.HasPrefix(date, key)
}
