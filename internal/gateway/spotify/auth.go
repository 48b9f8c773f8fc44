package spotify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RotateFunc вызывается, когда сервер выдал новый refresh token
type RotateFunc func(ctx context.Context, refreshToken string) error

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

type tokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Authenticator получает access token по refresh token
type Authenticator struct {
	client   *resty.Client
	tokenURL string
	cache    *TokenCache
	onRotate RotateFunc
	logger   *zap.Logger

	mu    sync.Mutex
	creds Credentials
}

// NewAuthenticator создает аутентификатор поверх общего кэша токенов
func NewAuthenticator(tokenURL string, creds Credentials, cache *TokenCache, timeout time.Duration, logger *zap.Logger) *Authenticator {
	client := resty.New()
	client.SetTimeout(timeout)

	return &Authenticator{
		client:   client,
		tokenURL: tokenURL,
		cache:    cache,
		logger:   logger,
		creds:    creds,
	}
}

// OnRefreshTokenRotated задает обработчик нового refresh token
func (a *Authenticator) OnRefreshTokenRotated(fn RotateFunc) {
	a.onRotate = fn
}

// Token возвращает токен из кэша или обновляет его синхронно
func (a *Authenticator) Token(ctx context.Context) (*Token, error) {
	if token, ok := a.cache.Get(); ok {
		return token, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// другой вызов мог обновить токен, пока ждали блокировку
	if token, ok := a.cache.Get(); ok {
		return token, nil
	}

	return a.refresh(ctx)
}

// Invalidate сбрасывает закэшированный токен
func (a *Authenticator) Invalidate() {
	a.cache.Invalidate()
}

func (a *Authenticator) refresh(ctx context.Context) (*Token, error) {
	var result tokenResponse
	var failure tokenError

	resp, err := a.client.R().
		SetContext(ctx).
		SetBasicAuth(a.creds.ClientID, a.creds.ClientSecret).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": a.creds.RefreshToken,
		}).
		SetResult(&result).
		SetError(&failure).
		Post(a.tokenURL)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}

	if resp.IsError() {
		if failure.Error != "" {
			return nil, fmt.Errorf("token request failed with status %d: %s %s",
				resp.StatusCode(), failure.Error, failure.ErrorDescription)
		}
		return nil, fmt.Errorf("token request failed with status %d: %s",
			resp.StatusCode(), readBodySnippet(resp.Body()))
	}

	if result.AccessToken == "" {
		return nil, fmt.Errorf("no access token received")
	}

	tokenType := result.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	token := &Token{
		AccessToken: result.AccessToken,
		TokenType:   tokenType,
		ExpiresAt:   time.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
	}
	a.cache.Set(token)

	a.logger.Info("Spotify access token refreshed", zap.Int("expires_in", result.ExpiresIn))

	if result.RefreshToken != "" && result.RefreshToken != a.creds.RefreshToken {
		a.creds.RefreshToken = result.RefreshToken
		if a.onRotate != nil {
			if err := a.onRotate(ctx, result.RefreshToken); err != nil {
				a.logger.Warn("Failed to persist rotated refresh token", zap.Error(err))
			} else {
				a.logger.Info("Persisted rotated refresh token")
			}
		}
	}

	return token, nil
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
