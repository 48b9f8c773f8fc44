package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"monthlymix/internal/model"

	"go.uber.org/zap"
)

// ErrHistoryUnavailable возвращается, когда хранилище не ведет историю
var ErrHistoryUnavailable = errors.New("history is not available for this storage type")

// HistoryService ведет историю плейлистов и журнал запусков
type HistoryService struct {
	playlists model.PlaylistRepository
	runs      model.RunRepository
	logger    *zap.Logger
}

// NewHistoryService создает сервис истории. Репозитории могут быть nil.
func NewHistoryService(playlists model.PlaylistRepository, runs model.RunRepository, logger *zap.Logger) *HistoryService {
	return &HistoryService{
		playlists: playlists,
		runs:      runs,
		logger:    logger,
	}
}

// RecordPlaylist сохраняет опубликованный плейлист и его треки
func (s *HistoryService) RecordPlaylist(ctx context.Context, runID string, month model.TargetMonth, collection *Collection, tracks []model.ResolvedTrack) error {
	if s.playlists == nil {
		return nil
	}

	playlist := &model.Playlist{
		SpotifyID:  collection.ID,
		Name:       collection.Name,
		URL:        collection.URL,
		MonthKey:   month.Key,
		RunID:      runID,
		TrackCount: len(tracks),
	}

	rows := make([]model.PlaylistTrack, 0, len(tracks))
	for _, t := range tracks {
		rows = append(rows, model.PlaylistTrack{
			SpotifyID:   collection.ID,
			TrackID:     t.ID,
			URI:         t.URI,
			Title:       t.Name,
			Artist:      t.ArtistLine(),
			ReleaseDate: t.ReleaseDate,
		})
	}

	if err := s.playlists.Save(ctx, playlist, rows); err != nil {
		return fmt.Errorf("failed to save playlist %s: %w", collection.ID, err)
	}
	return nil
}

// RecordRun пишет запись о запуске
func (s *HistoryService) RecordRun(ctx context.Context, trigger model.TriggerType, started time.Time, report *model.Report) error {
	if s.runs == nil {
		return nil
	}

	record := &model.RunRecord{
		RunID:       report.RunID,
		MonthKey:    report.Month,
		Trigger:     trigger,
		Success:     report.Success,
		Message:     report.Message,
		TracksAdded: report.Stats.TracksAdded,
		ErrorCount:  len(report.Stats.Errors),
		DurationMS:  report.DurationMS,
		StartedAt:   started.UTC(),
	}
	if report.Playlist != nil {
		record.PlaylistID = report.Playlist.ID
	}

	return s.runs.Create(ctx, record)
}

// Summary сводка для статистики
type Summary struct {
	History *model.HistoryStats `json:"history"`
	Runs    []model.RunRecord   `json:"runs"`
}

// GetSummary возвращает историю плейлистов и последние запуски
func (s *HistoryService) GetSummary(ctx context.Context, topArtists, lastRuns int) (*Summary, error) {
	if s.playlists == nil || s.runs == nil {
		return nil, ErrHistoryUnavailable
	}

	stats, err := s.playlists.Stats(ctx, topArtists)
	if err != nil {
		return nil, fmt.Errorf("failed to get history stats: %w", err)
	}

	runs, err := s.runs.Latest(ctx, lastRuns)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest runs: %w", err)
	}

	return &Summary{History: stats, Runs: runs}, nil
}
