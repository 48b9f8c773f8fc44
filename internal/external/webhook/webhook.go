// Package webhook доставляет отчеты о запусках на HTTP адрес.
package webhook

import (
	"context"
	"fmt"
	"time"

	"monthlymix/internal/model"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Notifier отправляет отчет POST запросом в формате JSON
type Notifier struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

// NewNotifier создает уведомитель с повторами на 5xx
func NewNotifier(url string, timeout time.Duration, logger *zap.Logger) *Notifier {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "monthlymix/1.0")

	return &Notifier{
		client: client,
		url:    url,
		logger: logger,
	}
}

// Notify отправляет отчет
func (n *Notifier) Notify(ctx context.Context, report *model.Report) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("X-Run-ID", report.RunID).
		SetBody(report).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("failed to deliver report: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("report webhook returned %d", resp.StatusCode())
	}

	n.logger.Debug("Report delivered",
		zap.String("run_id", report.RunID),
		zap.Int("status", resp.StatusCode()))
	return nil
}
