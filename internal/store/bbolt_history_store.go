package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"keysonscreen/internal/history"
)

var bucketHistory = []byte("history")

// BboltHistoryStore keeps one record per entry keyed by a big-endian
// sequence number, so cursor order is insertion order.
type BboltHistoryStore struct {
	db       *bolt.DB
	capacity int
	mu       sync.Mutex
}

func NewBboltHistoryStore(path string, capacity int) (*BboltHistoryStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history db path is required")
	}
	capacity = history.ClampCapacity(capacity)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketHistory)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BboltHistoryStore{db: db, capacity: capacity}, nil
}

func (s *BboltHistoryStore) Append(ctx context.Context, entry history.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHistory)
		if b == nil {
			return errors.New("history bucket missing")
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put(sequenceKey(seq), raw); err != nil {
			return err
		}
		return trimOldest(b, s.capacity)
	})
}

func (s *BboltHistoryStore) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	out := make([]history.Entry, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHistory)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var entry history.Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			out = append(out, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BboltHistoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketHistory); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(bucketHistory)
		return err
	})
}

func (s *BboltHistoryStore) Backend() string {
	return BackendBbolt
}

func (s *BboltHistoryStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func trimOldest(b *bolt.Bucket, capacity int) error {
	count := 0
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		count++
	}
	excess := count - capacity
	if excess <= 0 {
		return nil
	}
	for k, _ := c.First(); k != nil && excess > 0; k, _ = c.First() {
		if err := c.Delete(); err != nil {
			return err
		}
		excess--
	}
	return nil
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
