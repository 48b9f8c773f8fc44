package telegram

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HandlerFunc обработчик сообщения
type HandlerFunc func(ctx context.Context, msg *tgbotapi.Message) error

// Middleware оборачивает обработчик
type Middleware func(next HandlerFunc) HandlerFunc

// ErrCommandNotFound неизвестная команда
var ErrCommandNotFound = errors.New("command not found")

// ErrForbidden команда доступна только администратору
var ErrForbidden = errors.New("command is restricted to admin chat")

// Router сопоставляет команды обработчикам. Сообщения без команды
// уходят в fallback.
type Router struct {
	routes      map[string]HandlerFunc
	fallback    HandlerFunc
	middlewares []Middleware
	mu          sync.RWMutex
}

// NewRouter создает роутер
func NewRouter() *Router {
	return &Router{routes: make(map[string]HandlerFunc)}
}

// Use добавляет middleware
func (r *Router) Use(mw Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// Handle регистрирует команду
func (r *Router) Handle(command string, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[command] = handler
}

// Fallback регистрирует обработчик обычных сообщений
func (r *Router) Fallback(handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = handler
}

// Dispatch вызывает обработчик через цепочку middleware
func (r *Router) Dispatch(ctx context.Context, msg *tgbotapi.Message) error {
	r.mu.RLock()
	var handler HandlerFunc
	if msg.IsCommand() {
		handler = r.routes[msg.Command()]
	} else {
		handler = r.fallback
	}
	middlewares := append([]Middleware(nil), r.middlewares...)
	r.mu.RUnlock()

	if handler == nil {
		return fmt.Errorf("%w: %s", ErrCommandNotFound, msg.Command())
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler(ctx, msg)
}

// RecoveryMiddleware превращает панику обработчика в ошибку
func RecoveryMiddleware(logger *zap.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, msg *tgbotapi.Message) (err error) {
			defer func() {
				if panicErr := recover(); panicErr != nil {
					logger.Error("Handler panic recovered",
						zap.String("command", msg.Command()),
						zap.Int64("chat_id", msg.Chat.ID),
						zap.Any("panic", panicErr),
						zap.String("stack", string(debug.Stack())))
					err = fmt.Errorf("panic: %v", panicErr)
				}
			}()
			return next(ctx, msg)
		}
	}
}

// LoggingMiddleware пишет в лог обработку сообщения
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, msg *tgbotapi.Message) error {
			start := time.Now()
			err := next(ctx, msg)

			fields := []zap.Field{
				zap.String("command", msg.Command()),
				zap.Int64("chat_id", msg.Chat.ID),
				zap.String("user", getUserIdentifier(msg.From)),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("Message handling failed", append(fields, zap.Error(err))...)
			} else {
				logger.Debug("Message handled", fields...)
			}
			return err
		}
	}
}

// RateLimiter ограничивает частоту сообщений одного пользователя
type RateLimiter struct {
	limiters map[int64]*rate.Limiter
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
}

// NewRateLimiter создает лимитер: requests сообщений за window
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[int64]*rate.Limiter),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
	}
}

// Allow сообщает, можно ли обработать сообщение пользователя
func (l *RateLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}

// RateLimitMiddleware молча пропускает сообщения сверх лимита
func RateLimitMiddleware(limiter *RateLimiter, logger *zap.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, msg *tgbotapi.Message) error {
			if msg.From != nil && !limiter.Allow(msg.From.ID) {
				logger.Warn("Rate limit exceeded", zap.Int64("user_id", msg.From.ID))
				return nil
			}
			return next(ctx, msg)
		}
	}
}

// AdminOnly ограничивает обработчик чатом администратора
func AdminOnly(adminChatID int64, next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, msg *tgbotapi.Message) error {
		if adminChatID == 0 || msg.Chat == nil || msg.Chat.ID != adminChatID {
			return ErrForbidden
		}
		return next(ctx, msg)
	}
}
