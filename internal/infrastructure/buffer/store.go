package buffer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const defaultBucket = "operations"

// Store is a bbolt-backed FIFO queue keyed by the bucket sequence, so replay
// follows the order in which writes were acknowledged.
type Store struct {
	db      *bolt.DB
	bucket  []byte
	maxSize int
}

// Open creates the file and bucket if needed. maxSize <= 0 disables the size cap.
func Open(path string, maxSize int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	bucket := []byte(defaultBucket)
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, bucket: bucket, maxSize: maxSize}, nil
}

func (s *Store) Enqueue(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	item.normalize()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if s.maxSize > 0 && b.Stats().KeyN >= s.maxSize {
			return ErrFull
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		payload, err := json.Marshal(item)
		if err != nil {
			return err
		}
		return b.Put(sequenceKey(seq), payload)
	})
}

// Peek returns up to limit items in drain order without removing them.
func (s *Store) Peek(limit int) ([]Item, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	items := make([]Item, 0, limit)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil && len(items) < limit; k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			item.key = append([]byte(nil), k...)
			items = append(items, item)
		}
		return nil
	})
	return items, err
}

func (s *Store) Remove(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if len(item.key) > 0 {
			return b.Delete(item.key)
		}
		return deleteByID(b, item.ID)
	})
}

// Retry bumps Retries and keeps item at its place in the queue.
func (s *Store) Retry(item Item) (Item, error) {
	if s == nil || s.db == nil {
		return item, bolt.ErrDatabaseNotOpen
	}
	key := item.key
	item.Retries++

	payload, err := json.Marshal(item)
	if err != nil {
		return item, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if len(key) == 0 {
			key = findByID(b, item.ID)
			if key == nil {
				return nil
			}
		}
		return b.Put(key, payload)
	})
	return item, err
}

func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Cleanup drops items queued before olderThan and returns how many were removed.
func (s *Store) Cleanup(olderThan time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			if item.Timestamp.Before(olderThan) {
				if err := c.Delete(); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	return removed, err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func deleteByID(b *bolt.Bucket, id string) error {
	if key := findByID(b, id); key != nil {
		return b.Delete(key)
	}
	return nil
}

func findByID(b *bolt.Bucket, id string) []byte {
	if id == "" {
		return nil
	}
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var item Item
		if err := json.Unmarshal(v, &item); err != nil {
			continue
		}
		if item.ID == id {
			return append([]byte(nil), k...)
		}
	}
	return nil
}

func sequenceKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%020d", seq))
}
