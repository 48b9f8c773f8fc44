package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const linksBucket = "submitted_links"

// BoltLinkStore хранит отправленные ссылки в файле bbolt.
// Ключ бакета это месяц, значение JSON массив строк.
type BoltLinkStore struct {
	db     *bolt.DB
	logger *zap.Logger
}

// NewBoltLinkStore открывает файл bbolt и создает бакет
func NewBoltLinkStore(path string, logger *zap.Logger) (*BoltLinkStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(linksBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	logger.Info("Opened bbolt link store", zap.String("path", path))

	return &BoltLinkStore{db: db, logger: logger}, nil
}

// Close закрывает файл bbolt
func (b *BoltLinkStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// GetSubmittedLinks возвращает отправки за месяц
func (b *BoltLinkStore) GetSubmittedLinks(_ context.Context, monthKey string) ([]string, error) {
	var links []string
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(linksBucket))
		if bucket == nil {
			return fmt.Errorf("links bucket missing")
		}
		var err error
		links, err = decodeLinks(bucket.Get([]byte(monthKey)))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read links for %s: %w", monthKey, err)
	}
	return links, nil
}

// AppendSubmittedLinks дописывает отправки в конец списка месяца
func (b *BoltLinkStore) AppendSubmittedLinks(_ context.Context, monthKey string, links []string) error {
	if len(links) == 0 {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(linksBucket))
		if bucket == nil {
			return fmt.Errorf("links bucket missing")
		}

		existing, err := decodeLinks(bucket.Get([]byte(monthKey)))
		if err != nil {
			return err
		}

		data, err := json.Marshal(append(existing, links...))
		if err != nil {
			return fmt.Errorf("encode links: %w", err)
		}
		return bucket.Put([]byte(monthKey), data)
	})
	if err != nil {
		return fmt.Errorf("failed to append links for %s: %w", monthKey, err)
	}

	b.logger.Debug("Appended submitted links",
		zap.String("month_key", monthKey),
		zap.Int("count", len(links)))
	return nil
}

func decodeLinks(value []byte) ([]string, error) {
	if value == nil {
		return []string{}, nil
	}
	var links []string
	if err := json.Unmarshal(value, &links); err != nil {
		return nil, fmt.Errorf("decode links: %w", err)
	}
	return links, nil
}
