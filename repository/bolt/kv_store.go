package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/repository"
)

const defaultBucket = "kv"

// entry is the on-disk envelope; ExpiresAt is zero for keys without a TTL.
type entry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func (e entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Store keeps every key in a single BoltDB bucket. Expired keys read as absent
// and are physically removed by PurgeExpired.
type Store struct {
	db     *bolt.DB
	bucket []byte
	now    func() time.Time
}

var (
	_ repository.KeyValueStore = (*Store)(nil)
	_ repository.ExpiryPurger  = (*Store)(nil)
)

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(file string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(file, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
		now:    time.Now,
	}, nil
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	if s == nil || s.db == nil {
		return "", bolt.ErrDatabaseNotOpen
	}
	var (
		item  entry
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &item)
	})
	if err != nil {
		return "", err
	}
	if !found || item.expired(s.now()) {
		return "", domain.ErrKeyNotFound
	}
	return item.Value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.put(key, entry{Value: value})
}

func (s *Store) SetWithExpiry(_ context.Context, key, value string, ttl time.Duration) error {
	item := entry{Value: value}
	if ttl > 0 {
		item.ExpiresAt = s.now().Add(ttl).UTC()
	}
	return s.put(key, item)
}

func (s *Store) Delete(_ context.Context, key string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

func (s *Store) Keys(_ context.Context, pattern string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, err
	}
	now := s.now()
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if ok, _ := path.Match(pattern, string(k)); !ok {
				continue
			}
			var item entry
			if err := json.Unmarshal(v, &item); err != nil || item.expired(now) {
				continue
			}
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys, err
}

func (s *Store) Ping(_ context.Context) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(s.bucket) == nil {
			return bolt.ErrBucketNotFound
		}
		return nil
	})
}

// PurgeExpired removes keys whose TTL has passed.
func (s *Store) PurgeExpired(_ context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	now := s.now()
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var stale [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			var item entry
			if err := json.Unmarshal(v, &item); err == nil && item.expired(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) put(key string, item entry) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), payload)
	})
}
