package repository

import (
	"context"
	"fmt"
	"time"

	"monthlymix/internal/model"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// PlaylistRepository реализует интерфейс истории плейлистов
type PlaylistRepository struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewPlaylistRepository создает новый репозиторий истории плейлистов
func NewPlaylistRepository(db *bun.DB, logger *zap.Logger) *PlaylistRepository {
	return &PlaylistRepository{
		db:     db,
		logger: logger,
	}
}

// Save сохраняет плейлист и его треки в одной транзакции.
// Повторное сохранение того же плейлиста обновляет счетчик и не дублирует треки.
func (r *PlaylistRepository) Save(ctx context.Context, playlist *model.Playlist, tracks []model.PlaylistTrack) error {
	now := time.Now().UTC()
	if playlist.CreatedAt.IsZero() {
		playlist.CreatedAt = now
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(playlist).
			On("CONFLICT (spotify_id) DO UPDATE").
			Set("track_count = EXCLUDED.track_count").
			Set("name = EXCLUDED.name").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to save playlist: %w", err)
		}

		if len(tracks) == 0 {
			return nil
		}

		for i := range tracks {
			tracks[i].SpotifyID = playlist.SpotifyID
			if tracks[i].AddedAt.IsZero() {
				tracks[i].AddedAt = now
			}
		}

		_, err = tx.NewInsert().
			Model(&tracks).
			On("CONFLICT (spotify_id, track_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to save playlist tracks: %w", err)
		}

		r.logger.Debug("Saved playlist history",
			zap.String("spotify_id", playlist.SpotifyID),
			zap.Int("tracks", len(tracks)))
		return nil
	})
}

// List возвращает последние плейлисты
func (r *PlaylistRepository) List(ctx context.Context, limit int) ([]model.Playlist, error) {
	playlists := make([]model.Playlist, 0)

	query := r.db.NewSelect().
		Model(&playlists).
		Order("month_key DESC", "id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	return playlists, nil
}

// GetTracks возвращает треки плейлиста по Spotify ID
func (r *PlaylistRepository) GetTracks(ctx context.Context, spotifyID string) ([]model.PlaylistTrack, error) {
	tracks := make([]model.PlaylistTrack, 0)

	err := r.db.NewSelect().
		Model(&tracks).
		Where("spotify_id = ?", spotifyID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist tracks: %w", err)
	}

	return tracks, nil
}

// Stats собирает статистику по всей истории
func (r *PlaylistRepository) Stats(ctx context.Context, topArtists int) (*model.HistoryStats, error) {
	stats := &model.HistoryStats{
		TopArtists: make([]model.ArtistCount, 0),
	}

	var err error
	stats.Playlists, err = r.db.NewSelect().Model((*model.Playlist)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count playlists: %w", err)
	}

	stats.Tracks, err = r.db.NewSelect().Model((*model.PlaylistTrack)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count playlist tracks: %w", err)
	}

	if topArtists > 0 {
		err = r.db.NewSelect().
			Model((*model.PlaylistTrack)(nil)).
			ColumnExpr("artist").
			ColumnExpr("COUNT(*) AS tracks").
			Group("artist").
			OrderExpr("tracks DESC, artist ASC").
			Limit(topArtists).
			Scan(ctx, &stats.TopArtists)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate artists: %w", err)
		}
	}

	stats.RecentLists, err = r.List(ctx, 12)
	if err != nil {
		return nil, err
	}
	if len(stats.RecentLists) > 0 {
		stats.LastMonth = stats.RecentLists[0].MonthKey
	}

	return stats, nil
}
