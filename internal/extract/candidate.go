package extract

import (
	"strings"
	"unicode/utf8"
)

// Candidate неразрешенное упоминание музыки из одной отправки
type Candidate struct {
	SourceURL     string   `json:"source_url,omitempty"`
	Platform      Platform `json:"platform"`
	DirectTrackID string   `json:"direct_track_id,omitempty"`
	SearchQuery   string   `json:"search_query,omitempty"`
	ArtistHint    string   `json:"artist_hint,omitempty"`
	TrackHint     string   `json:"track_hint,omitempty"`
}

// Key идентифицирует кандидата для удаления повторов между отправками
func (c Candidate) Key() string {
	if c.DirectTrackID != "" {
		return "id:" + c.DirectTrackID
	}
	if c.SourceURL != "" {
		return "url:" + c.SourceURL + "|" + strings.ToLower(c.SearchQuery)
	}
	return "text:" + strings.ToLower(c.SearchQuery)
}

// Options пороги для текстовых кандидатов без ссылки
type Options struct {
	MinTextLength  int
	MinQueryLength int
}

// DefaultOptions возвращает пороги по умолчанию
func DefaultOptions() Options {
	return Options{
		MinTextLength:  10,
		MinQueryLength: 12,
	}
}

// BuildCandidates строит кандидатов из одной отправки.
// Запрос для поиска берется из окружающего текста, а не из самой ссылки.
func BuildCandidates(submission string, opts Options) []Candidate {
	candidates := make([]Candidate, 0)
	if strings.TrimSpace(submission) == "" {
		return candidates
	}

	surrounding := RemoveURLs(submission)
	query := Normalize(surrounding)

	for _, link := range URLs(submission) {
		classification := Classify(link)
		if !classification.IsMusic() {
			continue
		}
		candidates = append(candidates, Candidate{
			SourceURL:     link,
			Platform:      classification.Platform,
			DirectTrackID: classification.TrackID,
			SearchQuery:   query.Raw,
			ArtistHint:    query.Artist,
			TrackHint:     query.Track,
		})
	}

	if len(candidates) > 0 {
		return candidates
	}

	if utf8.RuneCountInString(surrounding) <= opts.MinTextLength {
		return candidates
	}
	if !query.HasHints() && utf8.RuneCountInString(query.Raw) < opts.MinQueryLength {
		return candidates
	}

	return append(candidates, Candidate{
		Platform:    PlatformText,
		SearchQuery: query.Raw,
		ArtistHint:  query.Artist,
		TrackHint:   query.Track,
	})
}

// BuildAll строит кандидатов из всех отправок и убирает повторы,
// сохраняя порядок первого появления
func BuildAll(submissions []string, opts Options) []Candidate {
	result := make([]Candidate, 0, len(submissions))
	seen := make(map[string]struct{})

	for _, submission := range submissions {
		for _, c := range BuildCandidates(submission, opts) {
			key := c.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			result = append(result, c)
		}
	}

	return result
}
