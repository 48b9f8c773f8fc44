package config

import (
	"errors"
	"fmt"
	"os"

	"monthlymix/internal/model"

	"gopkg.in/yaml.v3"
)

// Sources описывает дополнительные источники ссылок
type Sources struct {
	Feeds []FeedSource `yaml:"feeds"`
	Pages []PageSource `yaml:"pages"`
}

// FeedSource RSS/Atom лента
type FeedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// PageSource страница сообщества, из которой собираются ссылки.
// Selector ограничивает область поиска, по умолчанию весь body.
type PageSource struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Selector string `yaml:"selector"`
}

// Empty сообщает, что источников нет
func (s *Sources) Empty() bool {
	return s == nil || (len(s.Feeds) == 0 && len(s.Pages) == 0)
}

// LoadSources читает YAML файл источников. Отсутствующий файл не ошибка.
func LoadSources(path string) (*Sources, error) {
	if path == "" {
		return &Sources{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Sources{}, nil
		}
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var sources Sources
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	var errs model.ValidationErrors
	for i, feed := range sources.Feeds {
		errs = appendValidation(errs, model.ValidateURL(fmt.Sprintf("feeds[%d].url", i), feed.URL))
	}
	for i, page := range sources.Pages {
		errs = appendValidation(errs, model.ValidateURL(fmt.Sprintf("pages[%d].url", i), page.URL))
		if page.Selector == "" {
			sources.Pages[i].Selector = "body"
		}
	}
	if errs.HasErrors() {
		return nil, fmt.Errorf("invalid sources file: %w", errs)
	}

	return &sources, nil
}

func appendValidation(errs model.ValidationErrors, err error) model.ValidationErrors {
	var ve model.ValidationError
	if errors.As(err, &ve) {
		errs = append(errs, ve)
	}
	return errs
}
