package localcache

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var bucketName = []byte("cache")

type entry struct {
	Value    json.RawMessage `json:"value"`
	StoredAt time.Time       `json:"stored_at"`
}

// Store is the bbolt implementation of Cache.
type Store struct {
	db     *bolt.DB
	maxAge time.Duration
}

// OpenStore opens or creates the cache file. Entries older than maxAge read as missing; zero keeps them forever.
func OpenStore(path string, maxAge time.Duration) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, maxAge: maxAge}, nil
}

// Open returns a Store, or Nop when disabled or the file cannot be opened.
func Open(enabled bool, path string, maxAge time.Duration, logger *zap.Logger) Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !enabled || path == "" {
		logger.Info("local cache disabled")
		return Nop{}
	}
	store, err := OpenStore(path, maxAge)
	if err != nil {
		logger.Warn("local cache unavailable, continuing without it", zap.String("path", path), zap.Error(err))
		return Nop{}
	}
	return store
}

func (s *Store) Get(ctx context.Context, key string, dst interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var raw []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketName).Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return err
	}
	if raw == nil {
		return ErrNotFound
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return err
	}
	if s.maxAge > 0 && time.Since(e.StoredAt) > s.maxAge {
		return ErrNotFound
	}
	return json.Unmarshal(e.Value, dst)
}

func (s *Store) Put(ctx context.Context, key string, value interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(entry{Value: body, StoredAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), payload)
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

// ListPrefix returns keys starting with prefix in byte order.
func (s *Store) ListPrefix(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys := make([]string, 0)
	p := []byte(prefix)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys, err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ Cache = (*Store)(nil)
