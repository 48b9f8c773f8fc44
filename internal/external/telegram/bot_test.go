package telegram

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"monthlymix/internal/model"
	"monthlymix/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const adminChat int64 = -100

type fakeSender struct {
	mu       sync.Mutex
	messages []tgbotapi.MessageConfig
	requests int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.messages = append(f.messages, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, m.Text)
	}
	return out
}

func (f *fakeSender) last() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type fakeSubmitter struct {
	submitted []string
}

func (f *fakeSubmitter) Submit(_ context.Context, texts []string) (*service.SubmitResult, error) {
	result := &service.SubmitResult{Month: "2026-03"}
	for _, text := range texts {
		if strings.Contains(text, "http") || strings.Contains(text, " - ") {
			f.submitted = append(f.submitted, text)
			result.Accepted++
		} else {
			result.Rejected++
		}
	}
	return result, nil
}

func (f *fakeSubmitter) Count(context.Context, model.TargetMonth) (int, error) {
	return len(f.submitted), nil
}

func (f *fakeSubmitter) CurrentMonth() model.TargetMonth {
	month, _ := model.ParseMonthKey("2026-03")
	return month
}

type fakeRunner struct {
	trigger model.TriggerType
	ctxErr  error
	done    chan struct{}
}

func (f *fakeRunner) TryRun(ctx context.Context, trigger model.TriggerType) (*model.Report, error) {
	f.trigger = trigger
	f.ctxErr = ctx.Err()
	defer close(f.done)
	return &model.Report{
		Success:  true,
		Message:  "Created Community Picks February 2026 with 3 tracks",
		Playlist: &model.PlaylistRef{Name: "Community Picks February 2026", URL: "https://open.spotify.com/playlist/pl1", ID: "pl1"},
		Stats:    model.RunStats{TracksAdded: 3, Errors: []string{}},
		RunID:    "run-1",
		Month:    "2026-02",
	}, nil
}

func newTestBot(runner service.Runner) (*Bot, *fakeSender, *fakeSubmitter) {
	sender := &fakeSender{}
	submitter := &fakeSubmitter{}
	bot := NewBot(NewBotAPI(sender, zap.NewNop()), submitter, runner, nil, adminChat, zap.NewNop())
	return bot, sender, submitter
}

func message(chatID int64, chatType, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: 42, UserName: "alice"},
		Chat:      &tgbotapi.Chat{ID: chatID, Type: chatType},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		cmd := strings.SplitN(text, " ", 2)[0]
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return tgbotapi.Update{UpdateID: 1, Message: msg}
}

func TestBot_StoresSubmissions(t *testing.T) {
	bot, sender, submitter := newTestBot(nil)
	ctx := context.Background()

	bot.HandleUpdate(ctx, message(1, "private", "https://open.spotify.com/track/ABC123"))
	assert.Equal(t, "🎵 Saved for 2026-03", sender.last())
	assert.Len(t, submitter.submitted, 1)

	bot.HandleUpdate(ctx, message(1, "private", "hello there"))
	assert.Contains(t, sender.last(), "could not find a track")

	before := len(sender.texts())
	bot.HandleUpdate(ctx, message(-5, "group", "good morning"))
	assert.Len(t, sender.texts(), before)
}

func TestBot_Commands(t *testing.T) {
	bot, sender, _ := newTestBot(nil)
	ctx := context.Background()

	bot.HandleUpdate(ctx, message(1, "private", "/help"))
	assert.Contains(t, sender.last(), "/month")
	assert.NotContains(t, sender.last(), "/run")

	bot.HandleUpdate(ctx, message(1, "private", "/month"))
	assert.Equal(t, "March 2026: 0 submissions so far.", sender.last())

	bot.HandleUpdate(ctx, message(1, "private", "/unknown"))
	assert.Contains(t, sender.last(), "Unknown command")
}

func TestBot_RunIsAdminOnly(t *testing.T) {
	runner := &fakeRunner{done: make(chan struct{})}
	bot, sender, _ := newTestBot(runner)
	ctx := context.Background()

	bot.HandleUpdate(ctx, message(1, "private", "/run"))
	assert.Contains(t, sender.last(), "admin chat only")

	bot.HandleUpdate(ctx, message(adminChat, "supergroup", "/run"))
	select {
	case <-runner.done:
	case <-time.After(time.Second):
		t.Fatal("run was not started")
	}
	require.Eventually(t, func() bool {
		return strings.Contains(sender.last(), "open.spotify.com/playlist/pl1")
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, model.TriggerBot, runner.trigger)
}

func TestBot_RunOutlivesUpdateContext(t *testing.T) {
	runner := &fakeRunner{done: make(chan struct{})}
	bot, _, _ := newTestBot(runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bot.HandleUpdate(ctx, message(adminChat, "supergroup", "/run"))
	select {
	case <-runner.done:
	case <-time.After(time.Second):
		t.Fatal("run was not started")
	}
	assert.NoError(t, runner.ctxErr)
}

func TestNotifier_Notify(t *testing.T) {
	sender := &fakeSender{}
	notifier := NewNotifier(NewBotAPI(sender, zap.NewNop()), adminChat)

	err := notifier.Notify(context.Background(), &model.Report{
		Success: false,
		Message: "missing required configuration: SPOTIFY_OWNER_ID",
		Stats:   model.RunStats{Errors: []string{"a", "b", "c", "d", "e", "f", "g"}},
		RunID:   "run-2",
	})
	require.NoError(t, err)

	require.Len(t, sender.messages, 1)
	assert.Equal(t, adminChat, sender.messages[0].ChatID)
	text := sender.messages[0].Text
	assert.True(t, strings.HasPrefix(text, "❌ missing required configuration"))
	assert.Contains(t, text, "Errors (7)")
	assert.Contains(t, text, "and 2 more")
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2, time.Hour)
	assert.True(t, limiter.Allow(1))
	assert.True(t, limiter.Allow(1))
	assert.False(t, limiter.Allow(1))
	assert.True(t, limiter.Allow(2))
}

func TestRouter_RecoversPanic(t *testing.T) {
	router := NewRouter()
	router.Use(RecoveryMiddleware(zap.NewNop()))
	router.Fallback(func(context.Context, *tgbotapi.Message) error {
		panic("boom")
	})

	err := router.Dispatch(context.Background(), message(1, "private", "text").Message)
	assert.Error(t, err)
}
