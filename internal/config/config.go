// Package config содержит загрузку и валидацию конфигурации.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Типы хранилища
const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
	StorageBolt     = "bbolt"
)

// Config представляет конфигурацию приложения
type Config struct {
	// Storage
	StorageType string
	DatabaseURL string
	SQLitePath  string
	BoltPath    string

	// Spotify
	Spotify SpotifyConfig

	// Pipeline
	Pipeline PipelineConfig

	// HTTP
	HTTPPort         int
	HTTPClientConfig HTTPClientConfig

	// Schedule
	ScheduleEnabled bool
	ScheduleCron    string

	// Telegram
	BotToken    string
	AdminChatID int64

	// Webhook
	ReportWebhookURL string

	// Sources
	SourcesFile         string
	ScraperRequestDelay time.Duration

	// Logging
	LogLevel string

	// App Data Directory
	AppDataDir string
}

// SpotifyConfig содержит учетные данные и адреса Spotify API.
// Учетные данные могут отсутствовать в окружении и подгружаться из базы.
type SpotifyConfig struct {
	ClientID       string
	ClientSecret   string
	RefreshToken   string
	OwnerID        string
	APIURL         string
	TokenURL       string
	MaxRateRetries int
}

// PipelineConfig содержит настройки конвейера сопоставления треков
type PipelineConfig struct {
	RequestDelay       time.Duration
	BatchPause         time.Duration
	SearchLimit        int
	TextMinLength      int
	TextMinQueryLength int
	PlaylistPrefix     string
}

// HTTPClientConfig представляет конфигурацию HTTP клиента
type HTTPClientConfig struct {
	Timeout               time.Duration
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// .env необязателен, переменные могут прийти из окружения
	_ = godotenv.Load()

	appDataDir := getEnv("APP_DATA_DIR", "./data")

	config := &Config{
		StorageType: getEnv("STORAGE_TYPE", StorageSQLite),
		DatabaseURL: getEnv("DB_DSN", ""),
		SQLitePath:  getEnv("SQLITE_PATH", appDataDir+"/monthlymix.db"),
		BoltPath:    getEnv("BBOLT_PATH", appDataDir+"/links.db"),
		Spotify: SpotifyConfig{
			ClientID:       getEnv("SPOTIFY_CLIENT_ID", ""),
			ClientSecret:   getEnv("SPOTIFY_CLIENT_SECRET", ""),
			RefreshToken:   getEnv("SPOTIFY_REFRESH_TOKEN", ""),
			OwnerID:        getEnv("SPOTIFY_OWNER_ID", ""),
			APIURL:         getEnv("SPOTIFY_API_URL", "https://api.spotify.com/v1/"),
			TokenURL:       getEnv("SPOTIFY_TOKEN_URL", "https://accounts.spotify.com/api/token"),
			MaxRateRetries: getEnvInt("RATE_LIMIT_MAX_RETRIES", 5),
		},
		Pipeline: PipelineConfig{
			RequestDelay:       getEnvDuration("REQUEST_DELAY", 300*time.Millisecond),
			BatchPause:         getEnvDuration("BATCH_PAUSE", 200*time.Millisecond),
			SearchLimit:        getEnvInt("SEARCH_LIMIT", 10),
			TextMinLength:      getEnvInt("TEXT_MIN_LENGTH", 10),
			TextMinQueryLength: getEnvInt("TEXT_MIN_QUERY_LENGTH", 12),
			PlaylistPrefix:     getEnv("PLAYLIST_PREFIX", "Community Picks"),
		},
		HTTPPort: getEnvInt("HTTP_PORT", 8080),
		HTTPClientConfig: HTTPClientConfig{
			Timeout:               getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
			MaxIdleConns:          getEnvInt("HTTP_MAX_IDLE_CONNS", 100),
			MaxIdleConnsPerHost:   getEnvInt("HTTP_MAX_IDLE_CONNS_PER_HOST", 10),
			IdleConnTimeout:       getEnvDuration("HTTP_IDLE_CONN_TIMEOUT", 90*time.Second),
			TLSHandshakeTimeout:   getEnvDuration("HTTP_TLS_HANDSHAKE_TIMEOUT", 10*time.Second),
			ResponseHeaderTimeout: getEnvDuration("HTTP_RESPONSE_HEADER_TIMEOUT", 30*time.Second),
		},
		ScheduleEnabled:     getEnvBool("SCHEDULE_ENABLED", true),
		ScheduleCron:        getEnv("SCHEDULE_CRON", "0 6 1 * *"),
		BotToken:            getEnv("BOT_TOKEN", ""),
		AdminChatID:         getEnvInt64("ADMIN_CHAT_ID", 0),
		ReportWebhookURL:    getEnv("REPORT_WEBHOOK_URL", ""),
		SourcesFile:         getEnv("SOURCES_FILE", "./configs/sources.yaml"),
		ScraperRequestDelay: getEnvDuration("SCRAPER_REQUEST_DELAY", 2*time.Second),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		AppDataDir:          appDataDir,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate проверяет конфигурацию.
// Учетные данные Spotify здесь не проверяются: они могут храниться в базе
// и проверяются на каждом запуске.
func (c *Config) Validate() error {
	switch c.StorageType {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DB_DSN is required for postgres storage")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for sqlite storage")
		}
	case StorageBolt:
		if c.BoltPath == "" {
			return fmt.Errorf("BBOLT_PATH is required for bbolt storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.StorageType)
	}

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}

	if c.Pipeline.SearchLimit <= 0 || c.Pipeline.SearchLimit > 50 {
		return fmt.Errorf("SEARCH_LIMIT must be between 1 and 50")
	}

	if c.Pipeline.RequestDelay < 0 || c.Pipeline.BatchPause < 0 {
		return fmt.Errorf("REQUEST_DELAY and BATCH_PAUSE must not be negative")
	}

	if c.ScheduleEnabled && c.ScheduleCron == "" {
		return fmt.Errorf("SCHEDULE_CRON is required when scheduling is enabled")
	}

	return nil
}

// getEnv получает переменную окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvInt64 получает переменную окружения как int64
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как time.Duration
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvBool получает переменную окружения как bool
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
