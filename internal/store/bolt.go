package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/domain"
	bolt "go.etcd.io/bbolt"
	bolterrors "go.etcd.io/bbolt/errors"
)

// Bucket names
var (
	bucketKV    = []byte("kv")
	bucketPages = []byte("pages")
)

// BoltStore implements KV and domain.PageCache using BoltDB.
// An empty directory yields a memory-only store.
type BoltStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache and closed

	// In-memory cache for hot-path reads (promoted on access)
	cache  map[string][]byte
	closed bool
}

func NewBoltStore(dir string) (*BoltStore, error) {
	if dir == "" {
		// Memory-only mode (no persistence)
		return &BoltStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "pokedex.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketKV, bucketPages} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *BoltStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *BoltStore) get(bucket []byte, key string) ([]byte, bool, error) {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, false, domain.ErrStoreClosed
	}
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return data, true, nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false, nil
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return data, true, nil
}

func (s *BoltStore) set(bucket []byte, key string, data []byte) error {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return domain.ErrStoreClosed
	}

	// Cache only what reached disk
	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucket).Put([]byte(key), data)
		})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	s.cache[cacheKey] = data
	return nil
}

func (s *BoltStore) deleteBucketContents(bucket []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrStoreClosed
	}
	prefix := string(bucket) + ":"
	for k := range s.cache {
		if strings.HasPrefix(k, prefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucket); err != nil && err != bolterrors.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(bucket)
		return err
	})
}

// === KV ===

func (s *BoltStore) Get(key string) (string, bool, error) {
	data, ok, err := s.get(bucketKV, key)
	if err != nil || !ok {
		return "", false, err
	}
	return string(data), true, nil
}

func (s *BoltStore) Set(key, value string) error {
	return s.set(bucketKV, key, []byte(value))
}

// === Pages (key: {limit}:{page}) ===

func pageKey(page, limit int) string {
	return strconv.Itoa(limit) + ":" + strconv.Itoa(page)
}

func (s *BoltStore) GetPage(page, limit int) ([]domain.Pokemon, bool) {
	data, ok, err := s.get(bucketPages, pageKey(page, limit))
	if err != nil || !ok {
		return nil, false
	}
	var items []domain.Pokemon
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (s *BoltStore) SavePage(page, limit int, items []domain.Pokemon) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.set(bucketPages, pageKey(page, limit), data)
}

func (s *BoltStore) InvalidatePages() error {
	return s.deleteBucketContents(bucketPages)
}
