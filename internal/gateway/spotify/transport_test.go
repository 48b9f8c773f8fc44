package spotify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticTokens struct {
	invalidated atomic.Int32
}

func (s *staticTokens) Token(context.Context) (*Token, error) {
	token := "t1"
	if s.invalidated.Load() > 0 {
		token = "t2"
	}
	return &Token{AccessToken: token, TokenType: "Bearer"}, nil
}

func (s *staticTokens) Invalidate() {
	s.invalidated.Add(1)
}

func newTestTransport(tokens tokenSource, maxRetries int, slept *[]time.Duration) *tokenTransport {
	return &tokenTransport{
		base:       http.DefaultTransport,
		tokens:     tokens,
		maxRetries: maxRetries,
		sleep: func(_ context.Context, d time.Duration) error {
			*slept = append(*slept, d)
			return nil
		},
		logger: zap.NewNop(),
	}
}

func TestTransport_RetriesAfterRateLimit(t *testing.T) {
	var calls atomic.Int32
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(data))
		assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
		if calls.Add(1) <= 2 {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	var slept []time.Duration
	client := &http.Client{Transport: newTestTransport(&staticTokens{}, 5, &slept)}

	req, err := http.NewRequest(http.MethodPost, server.URL, strings.NewReader(`{"uris":[]}`))
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, slept)
	assert.Equal(t, []string{`{"uris":[]}`, `{"uris":[]}`, `{"uris":[]}`}, bodies)
}

func TestTransport_RetryCap(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	var slept []time.Duration
	client := &http.Client{Transport: newTestTransport(&staticTokens{}, 2, &slept)}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{defaultRetryAfter, defaultRetryAfter}, slept)
}

func TestTransport_RefreshesRejectedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tokens := &staticTokens{}
	var slept []time.Duration
	client := &http.Client{Transport: newTestTransport(tokens, 5, &slept)}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), tokens.invalidated.Load())
	assert.Empty(t, slept)
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, defaultRetryAfter, retryAfter(""))
	assert.Equal(t, 7*time.Second, retryAfter("7"))
	assert.Equal(t, time.Duration(0), retryAfter("0"))
	assert.Equal(t, defaultRetryAfter, retryAfter("soon"))

	future := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
	d := retryAfter(future)
	assert.True(t, d > 5*time.Second && d <= 10*time.Second, "unexpected delay %s", d)
}

func TestTokenCache(t *testing.T) {
	cache := NewTokenCache()

	_, ok := cache.Get()
	assert.False(t, ok)

	// истекает внутри буфера, не кэшируется
	cache.Set(&Token{AccessToken: "short", ExpiresAt: time.Now().Add(30 * time.Second)})
	_, ok = cache.Get()
	assert.False(t, ok)

	cache.Set(&Token{AccessToken: "long", ExpiresAt: time.Now().Add(time.Hour)})
	token, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, "long", token.AccessToken)

	cache.Invalidate()
	_, ok = cache.Get()
	assert.False(t, ok)
}
