package telegram

import (
	"context"

	"monthlymix/internal/model"
)

// Notifier отправляет отчеты о запусках в чат администратора
type Notifier struct {
	api    *BotAPI
	chatID int64
}

// NewNotifier создает уведомитель
func NewNotifier(api *BotAPI, chatID int64) *Notifier {
	return &Notifier{api: api, chatID: chatID}
}

// Notify отправляет отчет
func (n *Notifier) Notify(_ context.Context, report *model.Report) error {
	return n.api.SendMessage(n.chatID, FormatReport(report))
}
