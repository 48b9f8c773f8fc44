// Package feed читает отправки из RSS/Atom лент.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"monthlymix/internal/extract"
	"monthlymix/internal/model"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// maxItems ограничивает число записей одной ленты
const maxItems = 200

// Source лента, из записей которой собираются ссылки за месяц
type Source struct {
	name   string
	url    string
	parser *gofeed.Parser
	logger *zap.Logger
}

// NewSource создает источник. client может быть nil.
func NewSource(name, url string, client *http.Client, logger *zap.Logger) *Source {
	if name == "" {
		name = url
	}
	parser := gofeed.NewParser()
	if client != nil {
		parser.Client = client
	}
	return &Source{
		name:   name,
		url:    url,
		parser: parser,
		logger: logger,
	}
}

// Name возвращает имя источника
func (s *Source) Name() string {
	return "feed:" + s.name
}

// Fetch возвращает записи, опубликованные в месяце. Записи без даты пропускаются.
func (s *Source) Fetch(ctx context.Context, month model.TargetMonth) ([]string, error) {
	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", s.url, err)
	}

	items := make([]string, 0)
	skipped := 0
	for i, item := range feed.Items {
		if i >= maxItems {
			break
		}

		published := publishedAt(item)
		if published == nil || !month.Contains(published.UTC()) {
			skipped++
			continue
		}

		if submission := s.itemText(item); submission != "" {
			items = append(items, submission)
		}
	}

	s.logger.Debug("Parsed feed",
		zap.String("source", s.name),
		zap.Int("items", len(items)),
		zap.Int("skipped", skipped))

	return items, nil
}

func publishedAt(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}

// itemText собирает текст записи: заголовок, текст тела и ссылки из тела
func (s *Source) itemText(item *gofeed.Item) string {
	body := item.Content
	if body == "" {
		body = item.Description
	}

	parts := []string{strings.TrimSpace(item.Title)}
	if body != "" {
		text, links, err := extract.FromHTML(body)
		if err != nil {
			s.logger.Debug("Failed to parse feed item body", zap.String("link", item.Link), zap.Error(err))
		} else {
			parts = append(parts, text)
			parts = append(parts, links...)
		}
	}

	return strings.TrimSpace(strings.Join(parts, " "))
}
