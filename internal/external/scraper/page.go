package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"monthlymix/internal/extract"
	"monthlymix/internal/model"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// PageSource собирает записи со страницы. Каждый элемент по селектору
// становится одной отправкой: его текст и ссылки внутри.
type PageSource struct {
	page      Page
	config    Config
	transport http.RoundTripper
	logger    *zap.Logger
}

// NewPageSource создает источник страницы
func NewPageSource(page Page, config Config, logger *zap.Logger) *PageSource {
	if page.Selector == "" {
		page.Selector = "body"
	}
	if page.Name == "" {
		page.Name = page.URL
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	return &PageSource{
		page:      page,
		config:    config,
		transport: newTransport(config.HTTPClientConfig),
		logger:    logger,
	}
}

// Name возвращает имя источника
func (s *PageSource) Name() string {
	return "page:" + s.page.Name
}

// Fetch читает страницу. У записей страницы нет даты, месяц
// отбирается позже по дате релиза трека.
func (s *PageSource) Fetch(ctx context.Context, _ model.TargetMonth) ([]string, error) {
	var (
		mu    sync.Mutex
		items []string
	)

	collector := s.newCollector()
	collector.OnHTML(s.page.Selector, func(e *colly.HTMLElement) {
		if ctx.Err() != nil {
			return
		}

		fragment, err := e.DOM.Html()
		if err != nil {
			return
		}
		text, links, err := extract.FromHTML(fragment)
		if err != nil {
			s.logger.Debug("Failed to parse page element", zap.String("url", e.Request.URL.String()), zap.Error(err))
			return
		}

		submission := strings.TrimSpace(text + " " + strings.Join(links, " "))
		if submission == "" {
			return
		}

		mu.Lock()
		items = append(items, submission)
		mu.Unlock()
	})

	var visitErr error
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode >= 400 {
			visitErr = &statusError{code: r.StatusCode}
			return
		}
		visitErr = err
	})

	err := WithRetry(ctx, s.logger, s.config.RetryConfig, func() error {
		visitErr = nil
		mu.Lock()
		items = nil
		mu.Unlock()

		if err := collector.Visit(s.page.URL); err != nil && visitErr == nil {
			visitErr = err
		}
		collector.Wait()
		return visitErr
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to scrape %s: %w", s.page.URL, err)
	}

	s.logger.Debug("Scraped page",
		zap.String("source", s.page.Name),
		zap.String("selector", s.page.Selector),
		zap.Int("items", len(items)))

	return items, nil
}

// newCollector создает collector colly с настроенным транспортом и задержкой
func (s *PageSource) newCollector() *colly.Collector {
	collector := colly.NewCollector(
		colly.UserAgent(s.config.UserAgent),
		colly.MaxDepth(1),
		colly.AllowURLRevisit(),
	)
	collector.WithTransport(s.transport)
	collector.SetRequestTimeout(requestTimeout(s.config.HTTPClientConfig))

	_ = collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       s.config.RequestDelay,
	})

	collector.OnResponse(func(r *colly.Response) {
		s.logger.Debug("Received response",
			zap.String("url", r.Request.URL.String()),
			zap.Int("status", r.StatusCode),
			zap.Int("size", len(r.Body)))
	})

	return collector
}
