// Package model содержит модели данных.
//
// Группа: ENTITIES - Основные сущности
// Содержит: Playlist, PlaylistTrack, PlaylistRepository, HistoryStats
package model

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Playlist представляет опубликованный плейлист месяца
type Playlist struct {
	bun.BaseModel `bun:"table:playlists"`

	ID         int       `bun:"id,pk,autoincrement" json:"id"`
	SpotifyID  string    `bun:"spotify_id,unique,notnull" json:"spotify_id"`
	Name       string    `bun:"name,notnull" json:"name"`
	URL        string    `bun:"url,notnull" json:"url"`
	MonthKey   string    `bun:"month_key,notnull" json:"month_key"`
	RunID      string    `bun:"run_id" json:"run_id"`
	TrackCount int       `bun:"track_count,notnull,default:0" json:"track_count"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// PlaylistTrack представляет трек в опубликованном плейлисте
type PlaylistTrack struct {
	bun.BaseModel `bun:"table:playlist_tracks"`

	ID          int       `bun:"id,pk,autoincrement" json:"id"`
	SpotifyID   string    `bun:"spotify_id,notnull,unique:playlist_track" json:"spotify_id"`
	TrackID     string    `bun:"track_id,notnull,unique:playlist_track" json:"track_id"`
	URI         string    `bun:"uri,notnull" json:"uri"`
	Title       string    `bun:"title,notnull" json:"title"`
	Artist      string    `bun:"artist,notnull" json:"artist"`
	ReleaseDate string    `bun:"release_date" json:"release_date"`
	AddedAt     time.Time `bun:"added_at,notnull,default:current_timestamp" json:"added_at"`
}

// ArtistCount число треков артиста во всей истории
type ArtistCount struct {
	Artist string `bun:"artist" json:"artist"`
	Tracks int    `bun:"tracks" json:"tracks"`
}

// HistoryStats статистика истории плейлистов
type HistoryStats struct {
	Playlists   int           `json:"playlists"`
	Tracks      int           `json:"tracks"`
	LastMonth   string        `json:"last_month,omitempty"`
	TopArtists  []ArtistCount `json:"top_artists"`
	RecentLists []Playlist    `json:"recent_playlists"`
}

// PlaylistRepository определяет интерфейс для истории плейлистов
type PlaylistRepository interface {
	Save(ctx context.Context, playlist *Playlist, tracks []PlaylistTrack) error
	List(ctx context.Context, limit int) ([]Playlist, error)
	GetTracks(ctx context.Context, spotifyID string) ([]PlaylistTrack, error)
	Stats(ctx context.Context, topArtists int) (*HistoryStats, error)
}
