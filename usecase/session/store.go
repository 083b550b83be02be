// Package session owns the lifecycle of server-side sessions: creation at
// login, lookup, lazy expiry on first access after expires_at, and explicit
// invalidation. Records live in the key-value store under session:<id>; the
// store TTL is only a hint and validity is always decided here.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/repository"
)

const (
	KeyPrefix  = "session:"
	DefaultTTL = 24 * time.Hour
)

type Store struct {
	kv     repository.KeyValueStore
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewStore(kv repository.KeyValueStore, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		kv:     kv,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Key returns the backing key for a session id.
func Key(id string) string {
	return KeyPrefix + id
}

// WellFormed reports whether id looks like an id issued by Create. Anything
// else is rejected without touching the store.
func WellFormed(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// Create issues a new session for the principal with a fixed TTL.
func (s *Store) Create(ctx context.Context, principal domain.Principal) (*domain.Session, error) {
	if principal.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to generate session id", err)
	}

	now := s.now().UTC()
	sess := &domain.Session{
		ID:        id.String(),
		UserID:    principal.UserID,
		Username:  principal.Username,
		Role:      principal.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.kv.SetWithExpiry(ctx, Key(sess.ID), string(payload), s.ttl); err != nil {
		return nil, domain.StoreUnavailable(err)
	}
	return sess, nil
}

// Get reads the raw record. It applies no expiry rules; use ValidateAndGet to
// authenticate a request.
func (s *Store) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.kv.Get(ctx, Key(id))
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.StoreUnavailable(err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.logger.Warn("undecodable session record", zap.Error(err))
		return nil, domain.ErrSessionMalformed
	}
	sess.ID = id
	return &sess, nil
}

// ValidateAndGet is the only lookup that may authenticate a request. An
// expired record is deleted here, at its first access after expiry.
func (s *Store) ValidateAndGet(ctx context.Context, id string) (*domain.Session, error) {
	if !WellFormed(id) {
		return nil, domain.ErrSessionMalformed
	}

	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sess.IsExpired(s.now()) {
		if err := s.kv.Delete(ctx, Key(id)); err != nil {
			s.logger.Error("failed to purge expired session", zap.String("user_id", sess.UserID), zap.Error(err))
		}
		return nil, domain.ErrSessionExpired
	}
	return sess, nil
}

// Invalidate deletes the session. Missing sessions are not an error.
func (s *Store) Invalidate(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, Key(id)); err != nil {
		return domain.StoreUnavailable(err)
	}
	return nil
}

// InvalidateUser removes every session belonging to userID and returns how
// many were deleted.
func (s *Store) InvalidateUser(ctx context.Context, userID string) (int, error) {
	keys, err := s.kv.Keys(ctx, KeyPrefix+"*")
	if err != nil {
		return 0, domain.StoreUnavailable(err)
	}

	removed := 0
	for _, key := range keys {
		sess, err := s.Get(ctx, strings.TrimPrefix(key, KeyPrefix))
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionMalformed):
			continue
		default:
			return removed, err
		}
		if sess.UserID != userID {
			continue
		}
		if err := s.Invalidate(ctx, sess.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
