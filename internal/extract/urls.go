// Package extract извлекает из сырых отправок ссылки и музыкальные упоминания.
package extract

import (
	"net/url"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile("(?i)\\bhttps?://[^\\s<>\"'`]+")

// URLs возвращает абсолютные http(s) ссылки из текста без повторов,
// в порядке первого появления. Невалидные совпадения отбрасываются.
func URLs(text string) []string {
	if text == "" {
		return []string{}
	}

	matches := urlPattern.FindAllString(text, -1)
	result := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))

	for _, match := range matches {
		candidate := trimTrailingPunctuation(match)
		if !isAbsoluteHTTP(candidate) {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		result = append(result, candidate)
	}

	return result
}

var emptyBrackets = regexp.MustCompile(`\(\s*\)|\[\s*\]`)

// RemoveURLs вырезает ссылки из текста, оставляя окружающий текст.
// Знаки, срезанные с конца ссылки, остаются в тексте, пустые скобки убираются.
func RemoveURLs(text string) string {
	stripped := urlPattern.ReplaceAllStringFunc(text, func(match string) string {
		return " " + match[len(trimTrailingPunctuation(match)):]
	})
	stripped = emptyBrackets.ReplaceAllString(stripped, " ")
	return strings.Join(strings.Fields(stripped), " ")
}

// trimTrailingPunctuation убирает знаки конца предложения.
// Закрывающая скобка снимается, только если в ссылке нет парной открывающей.
func trimTrailingPunctuation(s string) string {
	for len(s) > 0 {
		last := s[len(s)-1]
		switch last {
		case '.', ',', ';', ':', '!', '?', '\'', '"':
			s = s[:len(s)-1]
		case ')':
			if strings.Count(s, "(") >= strings.Count(s, ")") {
				return s
			}
			s = s[:len(s)-1]
		case ']':
			if strings.Count(s, "[") >= strings.Count(s, "]") {
				return s
			}
			s = s[:len(s)-1]
		default:
			if strings.HasSuffix(s, "…") {
				s = strings.TrimSuffix(s, "…")
				continue
			}
			return s
		}
	}
	return s
}

func isAbsoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Hostname() != ""
}
