package spotify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const defaultRetryAfter = time.Second

// tokenSource выдает актуальный токен
type tokenSource interface {
	Token(ctx context.Context) (*Token, error)
	Invalidate()
}

// tokenTransport добавляет токен к каждому запросу и повторяет запрос
// после 429 с паузой из Retry-After
type tokenTransport struct {
	base       http.RoundTripper
	tokens     tokenSource
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *zap.Logger
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	ctx := req.Context()
	reauthorized := false

	for attempt := 0; ; attempt++ {
		token, err := t.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("spotify auth: %w", err)
		}

		outgoing, err := t.prepare(req, attempt)
		if err != nil {
			return nil, err
		}
		outgoing.Header.Set("Authorization", token.TokenType+" "+token.AccessToken)

		resp, err := base.RoundTrip(outgoing)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized && !reauthorized && canReplay(req):
			// токен отозван раньше срока
			reauthorized = true
			drain(resp)
			t.tokens.Invalidate()
			t.logger.Warn("Spotify rejected access token, refreshing", zap.String("path", req.URL.Path))
			continue

		case resp.StatusCode == http.StatusTooManyRequests && attempt < t.maxRetries && canReplay(req):
			delay := retryAfter(resp.Header.Get("Retry-After"))
			drain(resp)
			t.logger.Warn("Spotify rate limit hit, waiting",
				zap.String("path", req.URL.Path),
				zap.Duration("retry_after", delay),
				zap.Int("attempt", attempt+1))
			if err := t.sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}

		return resp, nil
	}
}

// prepare клонирует запрос, при повторе перечитывая тело
func (t *tokenTransport) prepare(req *http.Request, attempt int) (*http.Request, error) {
	outgoing := req.Clone(req.Context())
	if attempt > 0 && req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		outgoing.Body = body
	}
	return outgoing, nil
}

func canReplay(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

// retryAfter разбирает Retry-After в секундах или HTTP дате
func retryAfter(value string) time.Duration {
	if value == "" {
		return defaultRetryAfter
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return defaultRetryAfter
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
		return 0
	}
	return defaultRetryAfter
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
