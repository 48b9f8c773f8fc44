package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"monthlymix/internal/model"
	"monthlymix/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Submitter принимает отправки участников
type Submitter interface {
	Submit(ctx context.Context, texts []string) (*service.SubmitResult, error)
	Count(ctx context.Context, month model.TargetMonth) (int, error)
	CurrentMonth() model.TargetMonth
}

// SummaryProvider выдает статистику истории
type SummaryProvider interface {
	GetSummary(ctx context.Context, topArtists, lastRuns int) (*service.Summary, error)
}

const helpText = `Send me a link to a track (Spotify, YouTube, SoundCloud, Apple Music, Deezer, Tidal, Bandcamp) or "Artist - Title".
Everything shared during a month goes into next month's playlist, filtered to tracks released that month.

/month - submissions so far this month
/help - this message`

const adminHelpText = `
/run - build the playlist for the previous month now
/stats - playlist history`

// Bot принимает отправки в чатах и выполняет команды администратора
type Bot struct {
	api         *BotAPI
	router      *Router
	submissions Submitter
	runner      service.Runner
	history     SummaryProvider
	adminChatID int64
	logger      *zap.Logger
}

// NewBot создает бота. runner и history могут быть nil.
func NewBot(api *BotAPI, submissions Submitter, runner service.Runner, history SummaryProvider, adminChatID int64, logger *zap.Logger) *Bot {
	b := &Bot{
		api:         api,
		router:      NewRouter(),
		submissions: submissions,
		runner:      runner,
		history:     history,
		adminChatID: adminChatID,
		logger:      logger,
	}

	b.router.Use(RecoveryMiddleware(logger))
	b.router.Use(LoggingMiddleware(logger))
	b.router.Use(RateLimitMiddleware(NewRateLimiter(10, time.Minute), logger))

	b.router.Handle("start", b.handleHelp)
	b.router.Handle("help", b.handleHelp)
	b.router.Handle("month", b.handleMonth)
	b.router.Handle("run", AdminOnly(adminChatID, b.handleRun))
	b.router.Handle("stats", AdminOnly(adminChatID, b.handleStats))
	b.router.Fallback(b.handleSubmission)

	return b
}

// Commands возвращает меню команд
func (b *Bot) Commands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "help", Description: "How to submit tracks"},
		{Command: "month", Description: "Submissions this month"},
	}
}

// Start обрабатывает обновления до отмены контекста
func (b *Bot) Start(ctx context.Context, updates <-chan tgbotapi.Update) error {
	if err := b.api.SetBotCommands(b.Commands()); err != nil {
		b.logger.Warn("Failed to set bot commands", zap.Error(err))
	}

	b.logger.Info("Telegram bot started")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Telegram bot stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return fmt.Errorf("update channel closed")
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate обрабатывает одно обновление
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	if msg.Text == "" && msg.Caption == "" {
		return
	}

	err := b.router.Dispatch(ctx, msg)
	switch {
	case err == nil:
	case errors.Is(err, ErrCommandNotFound):
		_ = b.api.Reply(msg, "Unknown command. Use /help")
	case errors.Is(err, ErrForbidden):
		_ = b.api.Reply(msg, "This command is available in the admin chat only.")
	default:
		_ = b.api.Reply(msg, "Something went wrong, please try again later.")
	}
}

func (b *Bot) handleHelp(_ context.Context, msg *tgbotapi.Message) error {
	text := helpText
	if b.adminChatID != 0 && msg.Chat.ID == b.adminChatID {
		text += adminHelpText
	}
	return b.api.Reply(msg, text)
}

func (b *Bot) handleMonth(ctx context.Context, msg *tgbotapi.Message) error {
	month := b.submissions.CurrentMonth()
	count, err := b.submissions.Count(ctx, month)
	if err != nil {
		return fmt.Errorf("failed to count submissions: %w", err)
	}
	return b.api.Reply(msg, fmt.Sprintf("%s: %d submissions so far.", month.Title(), count))
}

func (b *Bot) handleSubmission(ctx context.Context, msg *tgbotapi.Message) error {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	result, err := b.submissions.Submit(ctx, []string{text})
	if err != nil {
		return err
	}
	if result.Accepted == 0 {
		// в группах молчим, чтобы не отвечать на каждое сообщение
		if msg.Chat.IsPrivate() {
			return b.api.Reply(msg, "I could not find a track in this message. Use /help")
		}
		return nil
	}

	b.logger.Info("Submission stored",
		zap.String("month", result.Month),
		zap.String("user", getUserIdentifier(msg.From)))
	return b.api.Reply(msg, "🎵 Saved for "+result.Month)
}

func (b *Bot) handleRun(ctx context.Context, msg *tgbotapi.Message) error {
	if b.runner == nil {
		return b.api.Reply(msg, "Runs are not available.")
	}

	_ = b.api.Reply(msg, "Building the playlist…")

	// запуск длинный, цикл обновлений не блокируем.
	// Начатый запуск доводится до конца даже при остановке бота.
	runCtx := context.WithoutCancel(ctx)
	go func() {
		report, err := b.runner.TryRun(runCtx, model.TriggerBot)
		switch {
		case errors.Is(err, service.ErrRunInProgress):
			_ = b.api.Reply(msg, "A run is already in progress.")
		case err != nil:
			b.logger.Error("Run from bot failed", zap.Error(err))
			_ = b.api.Reply(msg, "Run failed: "+err.Error())
		default:
			_ = b.api.Reply(msg, FormatReport(report))
		}
	}()

	return nil
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	if b.history == nil {
		return b.api.Reply(msg, "History is not available.")
	}

	summary, err := b.history.GetSummary(ctx, 5, 5)
	if errors.Is(err, service.ErrHistoryUnavailable) {
		return b.api.Reply(msg, "History is not kept for this storage type.")
	}
	if err != nil {
		return err
	}
	return b.api.Reply(msg, FormatSummary(summary))
}
