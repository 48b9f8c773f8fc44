package service

import (
	"context"
	"fmt"
	"time"

	"monthlymix/internal/model"

	"go.uber.org/zap"
)

// Collection опубликованный плейлист
type Collection struct {
	ID   string
	URL  string
	Name string
}

// AppendResult итог добавления треков
type AppendResult struct {
	Added   int
	Skipped int
}

// Publisher создает плейлисты и добавляет в них треки пачками
type Publisher struct {
	api       PlaylistWriter
	batchSize int
	pause     time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	logger    *zap.Logger
}

// NewPublisher создает публикатор
func NewPublisher(api PlaylistWriter, pause time.Duration, logger *zap.Logger) *Publisher {
	return &Publisher{
		api:       api,
		batchSize: model.MaxBatchSize,
		pause:     pause,
		sleep:     sleepContext,
		logger:    logger,
	}
}

// CreateCollection создает приватный плейлист
func (p *Publisher) CreateCollection(ctx context.Context, ownerID, name, description string) (*Collection, error) {
	playlist, err := p.api.CreatePlaylist(ctx, ownerID, name, description)
	if err != nil {
		return nil, err
	}
	return &Collection{ID: playlist.ID, URL: playlist.URL, Name: playlist.Name}, nil
}

// AppendTracks добавляет треки, которых еще нет в плейлисте.
// Операция не транзакционна: при ошибке уже добавленные пачки остаются,
// а результат содержит частичные счетчики.
func (p *Publisher) AppendTracks(ctx context.Context, collectionID string, uris []string) (AppendResult, error) {
	var result AppendResult

	existing, err := p.api.PlaylistTrackURIs(ctx, collectionID)
	if err != nil {
		return result, fmt.Errorf("failed to load playlist membership: %w", err)
	}

	members := make(map[string]struct{}, len(existing)+len(uris))
	for _, uri := range existing {
		members[uri] = struct{}{}
	}

	pending := make([]string, 0, len(uris))
	for _, uri := range uris {
		if _, ok := members[uri]; ok {
			result.Skipped++
			continue
		}
		members[uri] = struct{}{}
		pending = append(pending, uri)
	}

	for start := 0; start < len(pending); start += p.batchSize {
		if start > 0 {
			if err := p.sleep(ctx, p.pause); err != nil {
				return result, err
			}
		}

		end := start + p.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		if err := p.api.AddTracks(ctx, collectionID, batch); err != nil {
			p.logger.Error("Failed to append batch, earlier batches stay applied",
				zap.String("playlist_id", collectionID),
				zap.Int("batch_start", start),
				zap.Int("added", result.Added),
				zap.Error(err))
			return result, fmt.Errorf("failed to append tracks %d-%d: %w", start+1, end, err)
		}
		result.Added += len(batch)

		p.logger.Debug("Appended batch",
			zap.String("playlist_id", collectionID),
			zap.Int("batch_size", len(batch)),
			zap.Int("added", result.Added))
	}

	return result, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
