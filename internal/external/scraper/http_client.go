package scraper

import (
	"net/http"
	"time"
)

// newTransport создает транспорт с пулом соединений
func newTransport(config HTTPClientConfig) *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
	}
}

func requestTimeout(config HTTPClientConfig) time.Duration {
	if config.Timeout > 0 {
		return config.Timeout
	}
	return 30 * time.Second
}
