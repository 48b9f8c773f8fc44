package service

import (
	"context"

	"monthlymix/internal/gateway/spotify"
	"monthlymix/internal/model"
)

// TrackFinder определяет поиск треков в Spotify
type TrackFinder interface {
	GetTrack(ctx context.Context, id string) (*spotify.Track, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]spotify.Track, error)
}

// PlaylistWriter определяет запись плейлистов в Spotify
type PlaylistWriter interface {
	CreatePlaylist(ctx context.Context, ownerID, name, description string) (*spotify.Playlist, error)
	PlaylistTrackURIs(ctx context.Context, playlistID string) ([]string, error)
	AddTracks(ctx context.Context, playlistID string, uris []string) error
}

// APIFactory создает клиента Spotify для учетных данных запуска
type APIFactory func(creds spotify.Credentials) spotify.Interface

// ActiveConfigSource выдает учетные данные для запуска
type ActiveConfigSource interface {
	GetActiveConfig(ctx context.Context) (*ActiveConfig, error)
}

// LinkSource дополнительный источник отправок, например лента или страница
type LinkSource interface {
	Name() string
	Fetch(ctx context.Context, month model.TargetMonth) ([]string, error)
}

// Notifier доставляет отчет о запуске
type Notifier interface {
	Notify(ctx context.Context, report *model.Report) error
}

// Runner запускает сборку плейлиста
type Runner interface {
	TryRun(ctx context.Context, trigger model.TriggerType) (*model.Report, error)
}
