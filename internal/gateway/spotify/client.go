// Package spotify реализует клиент для работы с Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
)

const (
	// PlaylistPageSize максимальный размер страницы элементов плейлиста
	PlaylistPageSize = 100

	trackURIPrefix = "spotify:track:"
)

// Client представляет клиент для работы с Spotify API от имени пользователя
type Client struct {
	api    *spotify.Client
	auth   *Authenticator
	logger *zap.Logger
}

// NewClient создает клиент. Токены берутся из общего кэша и обновляются
// по refresh token при необходимости.
func NewClient(cfg Config, creds Credentials, cache *TokenCache, logger *zap.Logger) *Client {
	auth := NewAuthenticator(cfg.TokenURL, creds, cache, cfg.Timeout, logger)

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &tokenTransport{
			base:       newBaseTransport(cfg),
			tokens:     auth,
			maxRetries: cfg.MaxRateRetries,
			sleep:      sleepContext,
			logger:     logger,
		},
	}

	opts := []spotify.ClientOption{}
	if cfg.APIURL != "" {
		apiURL := cfg.APIURL
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		opts = append(opts, spotify.WithBaseURL(apiURL))
	}

	return &Client{
		api:    spotify.New(httpClient, opts...),
		auth:   auth,
		logger: logger,
	}
}

// newBaseTransport создает транспорт с настройками пула соединений
func newBaseTransport(cfg Config) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
	}
}

// OnRefreshTokenRotated задает обработчик нового refresh token
func (c *Client) OnRefreshTokenRotated(fn RotateFunc) {
	c.auth.OnRefreshTokenRotated(fn)
}

// Authenticate получает access token заранее, чтобы ошибки учетных данных
// проявились до обработки кандидатов
func (c *Client) Authenticate(ctx context.Context) error {
	if _, err := c.auth.Token(ctx); err != nil {
		return fmt.Errorf("spotify authentication failed: %w", err)
	}
	return nil
}

// GetTrack возвращает трек по ID
func (c *Client) GetTrack(ctx context.Context, id string) (*Track, error) {
	full, err := c.api.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("get track %s: %w", id, err)
	}
	track := convertTrack(full)
	return &track, nil
}

// SearchTracks ищет треки и возвращает их в порядке выдачи Spotify
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	if result.Tracks == nil {
		return []Track{}, nil
	}

	tracks := make([]Track, 0, len(result.Tracks.Tracks))
	for i := range result.Tracks.Tracks {
		tracks = append(tracks, convertTrack(&result.Tracks.Tracks[i]))
	}
	return tracks, nil
}

// CreatePlaylist создает приватный плейлист пользователя
func (c *Client) CreatePlaylist(ctx context.Context, ownerID, name, description string) (*Playlist, error) {
	created, err := c.api.CreatePlaylistForUser(ctx, ownerID, name, description, false, false)
	if err != nil {
		return nil, fmt.Errorf("create playlist %q: %w", name, err)
	}

	id := string(created.ID)
	playlistURL := created.ExternalURLs["spotify"]
	if playlistURL == "" {
		playlistURL = "https://open.spotify.com/playlist/" + id
	}

	c.logger.Info("Created Spotify playlist",
		zap.String("playlist_id", id),
		zap.String("name", created.Name))

	return &Playlist{ID: id, Name: created.Name, URL: playlistURL}, nil
}

// PlaylistTrackURIs возвращает URI всех элементов плейлиста,
// проходя страницы по ссылке next
func (c *Client) PlaylistTrackURIs(ctx context.Context, playlistID string) ([]string, error) {
	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(PlaylistPageSize))
	if err != nil {
		return nil, fmt.Errorf("get playlist items %s: %w", playlistID, err)
	}

	uris := make([]string, 0, page.Total)
	for pageNum := 1; ; pageNum++ {
		for _, item := range page.Items {
			switch {
			case item.Track.Track != nil:
				uris = append(uris, string(item.Track.Track.URI))
			case item.Track.Episode != nil:
				uris = append(uris, string(item.Track.Episode.URI))
			}
		}

		c.logger.Debug("Retrieved playlist items page",
			zap.String("playlist_id", playlistID),
			zap.Int("page", pageNum),
			zap.Int("items_in_page", len(page.Items)),
			zap.Int("total_items", int(page.Total)))

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("get playlist items %s page %d: %w", playlistID, pageNum+1, err)
		}
	}

	return uris, nil
}

// AddTracks добавляет треки одним запросом, не больше PlaylistPageSize
func (c *Client) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) > PlaylistPageSize {
		return fmt.Errorf("too many tracks in one request: %d", len(uris))
	}

	ids := make([]spotify.ID, 0, len(uris))
	for _, uri := range uris {
		ids = append(ids, spotify.ID(TrackIDFromURI(uri)))
	}

	if _, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids...); err != nil {
		return fmt.Errorf("add %d tracks to playlist %s: %w", len(ids), playlistID, err)
	}
	return nil
}

// TrackIDFromURI возвращает ID трека из spotify:track:<id>
func TrackIDFromURI(uri string) string {
	return strings.TrimPrefix(uri, trackURIPrefix)
}

// TrackURI возвращает URI трека по ID
func TrackURI(id string) string {
	return trackURIPrefix + id
}

func convertTrack(full *spotify.FullTrack) Track {
	artists := make([]string, 0, len(full.Artists))
	for _, artist := range full.Artists {
		artists = append(artists, artist.Name)
	}

	uri := string(full.URI)
	if uri == "" && full.ID != "" {
		uri = TrackURI(string(full.ID))
	}

	return Track{
		ID:          string(full.ID),
		URI:         uri,
		Name:        full.Name,
		Artists:     artists,
		ReleaseDate: full.Album.ReleaseDate,
	}
}
