// Package scraper собирает отправки со страниц сообщества.
package scraper

import "time"

// Config представляет конфигурацию скрейпера
type Config struct {
	HTTPClientConfig HTTPClientConfig
	RetryConfig      RetryConfig
	RequestDelay     time.Duration
	UserAgent        string
}

// HTTPClientConfig представляет конфигурацию HTTP клиента
type HTTPClientConfig struct {
	Timeout               time.Duration
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
}

// RetryConfig представляет конфигурацию retry механизма
type RetryConfig struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig возвращает умеренные повторы для страниц
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        2,
		InitialDelay:      time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
	}
}

// Page описывает страницу и область, из которой берутся записи
type Page struct {
	Name     string
	URL      string
	Selector string
}

const defaultUserAgent = "Mozilla/5.0 (compatible; monthlymix/1.0)"
