package service

import (
	"context"
	"fmt"
	"strings"

	"monthlymix/internal/extract"
	"monthlymix/internal/model"

	"go.uber.org/zap"
)

// Resolver сопоставляет кандидата с треком Spotify, вышедшим в целевом месяце.
// Состояния между вызовами не хранит.
type Resolver struct {
	api         TrackFinder
	searchLimit int
	logger      *zap.Logger
}

// NewResolver создает резолвер
func NewResolver(api TrackFinder, searchLimit int, logger *zap.Logger) *Resolver {
	if searchLimit <= 0 {
		searchLimit = model.DefaultSearchLimit
	}
	return &Resolver{
		api:         api,
		searchLimit: searchLimit,
		logger:      logger,
	}
}

// Resolve возвращает принятый трек, nil если совпадения нет,
// или ошибку обращения к API
func (r *Resolver) Resolve(ctx context.Context, c extract.Candidate, month model.TargetMonth) (*model.ResolvedTrack, error) {
	// прямой ID авторитетен, поиск не выполняется
	if c.DirectTrackID != "" {
		track, err := r.api.GetTrack(ctx, c.DirectTrackID)
		if err != nil {
			return nil, err
		}
		if !model.MatchesMonth(track.ReleaseDate, month.Key) {
			r.logger.Debug("Direct track released outside target month",
				zap.String("track_id", track.ID),
				zap.String("release_date", track.ReleaseDate),
				zap.String("month", month.Key))
			return nil, nil
		}
		return toResolved(track.ID, track.URI, track.Name, track.Artists, track.ReleaseDate), nil
	}

	query := BuildSearchQuery(c)
	if query == "" {
		return nil, nil
	}

	tracks, err := r.api.SearchTracks(ctx, query, r.searchLimit)
	if err != nil {
		return nil, err
	}

	// первое совпадение в порядке выдачи
	for _, track := range tracks {
		if model.MatchesMonth(track.ReleaseDate, month.Key) {
			r.logger.Debug("Matched track by search",
				zap.String("query", query),
				zap.String("track_id", track.ID),
				zap.String("release_date", track.ReleaseDate))
			return toResolved(track.ID, track.URI, track.Name, track.Artists, track.ReleaseDate), nil
		}
	}

	r.logger.Debug("No search result in target month",
		zap.String("query", query),
		zap.Int("results", len(tracks)))
	return nil, nil
}

// BuildSearchQuery строит поисковый запрос Spotify из подсказок кандидата
func BuildSearchQuery(c extract.Candidate) string {
	raw := strings.TrimSpace(c.SearchQuery)
	trackHint := sanitizeHint(c.TrackHint)
	artistHint := sanitizeHint(c.ArtistHint)

	switch {
	case trackHint != "" && artistHint != "":
		return fmt.Sprintf(`track:"%s" artist:"%s"`, trackHint, artistHint)
	case trackHint != "":
		return strings.TrimSpace(fmt.Sprintf(`track:"%s" %s`, trackHint, raw))
	case artistHint != "":
		return strings.TrimSpace(fmt.Sprintf(`artist:"%s" %s`, artistHint, raw))
	default:
		return raw
	}
}

func sanitizeHint(hint string) string {
	return strings.TrimSpace(strings.ReplaceAll(hint, `"`, ""))
}

func toResolved(id, uri, name string, artists []string, releaseDate string) *model.ResolvedTrack {
	return &model.ResolvedTrack{
		ID:          id,
		URI:         uri,
		Name:        name,
		Artists:     artists,
		ReleaseDate: releaseDate,
	}
}

// candidateLabel описывает кандидата для логов и сообщений об ошибках
func candidateLabel(c extract.Candidate) string {
	if c.SourceURL != "" {
		return c.SourceURL
	}
	return fmt.Sprintf("%q", c.SearchQuery)
}
