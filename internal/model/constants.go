// Package model содержит константы для моделей.
//
// Группа: BASE - Базовые компоненты
// Содержит: лимиты Spotify API, ConfigKey
package model

const (
	// MaxBatchSize жесткий лимит Spotify на число треков в одном запросе добавления
	MaxBatchSize = 100

	// DefaultSearchLimit число результатов поиска по умолчанию
	DefaultSearchLimit = 10

	// MonthKeyLayout формат ключа месяца
	MonthKeyLayout = "2006-01"
)

// ConfigKey представляет ключи конфигурации
type ConfigKey string

const (
	ConfigKeySpotifyClientID     ConfigKey = "SPOTIFY_CLIENT_ID"
	ConfigKeySpotifyClientSecret ConfigKey = "SPOTIFY_CLIENT_SECRET"
	ConfigKeySpotifyRefreshToken ConfigKey = "SPOTIFY_REFRESH_TOKEN"
	ConfigKeySpotifyOwnerID      ConfigKey = "SPOTIFY_OWNER_ID"
)

// String возвращает строковое представление ключа
func (k ConfigKey) String() string {
	return string(k)
}

// IsSensitive сообщает, что значение ключа нельзя показывать
func (k ConfigKey) IsSensitive() bool {
	switch k {
	case ConfigKeySpotifyClientSecret, ConfigKeySpotifyRefreshToken:
		return true
	default:
		return false
	}
}

// IsValid проверяет, что ключ известен
func (k ConfigKey) IsValid() bool {
	switch k {
	case ConfigKeySpotifyClientID, ConfigKeySpotifyClientSecret, ConfigKeySpotifyRefreshToken, ConfigKeySpotifyOwnerID:
		return true
	default:
		return false
	}
}
