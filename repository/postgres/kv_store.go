package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/repository"
)

type kvStore struct {
	pool *pgxpool.Pool
}

// NewKeyValueStore instantiates a Postgres-backed key-value store on the
// kv_store table created by the bundled migrations.
func NewKeyValueStore(pool *pgxpool.Pool) repository.KeyValueStore {
	return &kvStore{pool: pool}
}

var _ repository.ExpiryPurger = (*kvStore)(nil)

func (s *kvStore) Get(ctx context.Context, key string) (string, error) {
	const query = `
		SELECT value
		FROM kv_store
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())
	`
	var value string
	if err := s.pool.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrKeyNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	return s.upsert(ctx, key, value, time.Time{})
}

func (s *kvStore) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UTC()
	}
	return s.upsert(ctx, key, value, expiresAt)
}

func (s *kvStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key)
	return err
}

func (s *kvStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	const query = `
		SELECT key
		FROM kv_store
		WHERE key LIKE $1 ESCAPE '\' AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY key
	`
	rows, err := s.pool.Query(ctx, query, globToLike(pattern))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *kvStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *kvStore) PurgeExpired(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM kv_store WHERE expires_at IS NOT NULL AND expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *kvStore) upsert(ctx context.Context, key, value string, expiresAt time.Time) error {
	const query = `
	INSERT INTO kv_store (key, value, expires_at, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value,
		expires_at = EXCLUDED.expires_at,
		updated_at = NOW();
	`
	_, err := s.pool.Exec(ctx, query, key, value, nullTime(expiresAt))
	return err
}
