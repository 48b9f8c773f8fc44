package spotify

import (
	"time"

	gcache "github.com/patrickmn/go-cache"
)

const (
	tokenKey = "access_token"

	// ExpiryBuffer запас до истечения токена, после которого он считается протухшим
	ExpiryBuffer = 60 * time.Second
)

// TokenCache общий на процесс кэш access token.
// Запись живет до истечения токена минус ExpiryBuffer.
type TokenCache struct {
	cache  *gcache.Cache
	buffer time.Duration
}

// NewTokenCache создает пустой кэш токенов
func NewTokenCache() *TokenCache {
	return &TokenCache{
		cache:  gcache.New(gcache.NoExpiration, time.Minute),
		buffer: ExpiryBuffer,
	}
}

// Get возвращает действующий токен
func (c *TokenCache) Get() (*Token, bool) {
	value, ok := c.cache.Get(tokenKey)
	if !ok {
		return nil, false
	}
	token, ok := value.(*Token)
	return token, ok
}

// Set сохраняет токен. Токен, истекающий раньше буфера, не кэшируется.
func (c *TokenCache) Set(token *Token) {
	ttl := time.Until(token.ExpiresAt) - c.buffer
	if ttl <= 0 {
		c.cache.Delete(tokenKey)
		return
	}
	c.cache.Set(tokenKey, token, ttl)
}

// Invalidate сбрасывает токен
func (c *TokenCache) Invalidate() {
	c.cache.Delete(tokenKey)
}
