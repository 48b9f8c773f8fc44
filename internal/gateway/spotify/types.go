// Package spotify содержит типы для работы с Spotify API.
package spotify

import "time"

// Track представляет трек Spotify
type Track struct {
	ID          string   // Spotify Track ID
	URI         string   // spotify:track:<id>
	Name        string   // Название трека
	Artists     []string // Исполнители в порядке Spotify
	ReleaseDate string   // Дата релиза альбома, точность от года до дня
}

// Playlist представляет созданный плейлист
type Playlist struct {
	ID   string
	Name string
	URL  string
}

// Credentials учетные данные приложения и пользователя
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Token access token Spotify
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Config адреса API и настройки транспорта
type Config struct {
	APIURL         string
	TokenURL       string
	MaxRateRetries int
	Timeout        time.Duration

	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
}
