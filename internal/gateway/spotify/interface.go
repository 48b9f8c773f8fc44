// Package spotify реализует интерфейсы для работы с Spotify Web API.
package spotify

import "context"

// Interface определяет интерфейс для работы с Spotify API
type Interface interface {
	// Authenticate получает access token
	Authenticate(ctx context.Context) error

	// GetTrack возвращает трек по ID
	GetTrack(ctx context.Context, id string) (*Track, error)

	// SearchTracks ищет треки
	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)

	// CreatePlaylist создает приватный плейлист
	CreatePlaylist(ctx context.Context, ownerID, name, description string) (*Playlist, error)

	// PlaylistTrackURIs возвращает URI всех элементов плейлиста
	PlaylistTrackURIs(ctx context.Context, playlistID string) ([]string, error)

	// AddTracks добавляет треки в плейлист одним запросом
	AddTracks(ctx context.Context, playlistID string, uris []string) error
}

var _ Interface = (*Client)(nil)
