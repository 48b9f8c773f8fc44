// Package telegram содержит интеграцию с Telegram Bot API: прием отправок
// участников и доставку отчетов администратору.
package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender часть tgbotapi.BotAPI, которой пользуется бот
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// BotAPI обертка над Sender для отправки сообщений
type BotAPI struct {
	api    Sender
	logger *zap.Logger
}

// NewBotAPI создает обертку
func NewBotAPI(api Sender, logger *zap.Logger) *BotAPI {
	return &BotAPI{api: api, logger: logger}
}

// NewTelegramAPI подключается к Telegram. endpoint может быть пустым.
func NewTelegramAPI(token, endpoint string) (*tgbotapi.BotAPI, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	bot.Debug = false
	return bot, nil
}

// SendMessage отправляет текстовое сообщение без разметки
func (b *BotAPI) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Reply отвечает на сообщение
func (b *BotAPI) Reply(msg *tgbotapi.Message, text string) error {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	reply.DisableWebPagePreview = true

	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error("Failed to send reply", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

// SetBotCommands устанавливает меню команд
func (b *BotAPI) SetBotCommands(commands []tgbotapi.BotCommand) error {
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	return nil
}

// getUserIdentifier возвращает идентификатор пользователя для логов
func getUserIdentifier(user *tgbotapi.User) string {
	if user == nil {
		return "unknown"
	}
	if user.UserName != "" {
		return "@" + user.UserName
	}
	if user.FirstName != "" {
		if user.LastName != "" {
			return user.FirstName + " " + user.LastName
		}
		return user.FirstName
	}
	return fmt.Sprintf("user_%d", user.ID)
}
