package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/pkg/password"
	"github.com/fastygo/accountdesk/repository"
	"github.com/fastygo/accountdesk/usecase/session"
)

// Grant is returned to a client after a successful login or registration.
type Grant struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      domain.Principal `json:"user"`
}

// dummyHash is compared against on unknown usernames so both login failures
// cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	hash, _ := password.Hash("accountdesk-no-such-user")
	return hash
})

type UseCase struct {
	users    repository.UserRepository
	sessions *session.Store
	logger   *zap.Logger
	verify   func(hash, plain string) bool
}

func New(users repository.UserRepository, sessions *session.Store, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		logger:   logger,
		verify:   password.Verify,
	}
}

// Register creates a viewer account and logs it in.
func (uc *UseCase) Register(ctx context.Context, username, email, plain string) (*Grant, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "username is required")
	}

	hash, err := password.Hash(plain)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Role:         domain.RoleViewer,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return uc.issue(ctx, user)
}

// Login checks credentials and opens a new session. Unknown users and wrong
// passwords produce the same error.
func (uc *UseCase) Login(ctx context.Context, username, plain string) (*Grant, error) {
	user, err := uc.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			uc.verify(dummyHash(), plain)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !uc.verify(user.PasswordHash, plain) {
		return nil, domain.ErrInvalidCredentials
	}
	return uc.issue(ctx, user)
}

func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessions.Invalidate(ctx, sessionID)
}

// EnsureAdmin creates an admin user when none with that username exists yet.
func (uc *UseCase) EnsureAdmin(ctx context.Context, username, plain string) (bool, error) {
	if username == "" || plain == "" {
		return false, nil
	}
	_, err := uc.users.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, err
	}

	hash, err := password.Hash(plain)
	if err != nil {
		return false, err
	}
	admin := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := uc.users.Create(ctx, admin); err != nil {
		return false, err
	}
	uc.logger.Info("bootstrap admin created", zap.String("username", username))
	return true, nil
}

func (uc *UseCase) issue(ctx context.Context, user *domain.User) (*Grant, error) {
	sess, err := uc.sessions.Create(ctx, user.Principal())
	if err != nil {
		return nil, err
	}
	return &Grant{
		Token:     sess.ID,
		ExpiresAt: sess.ExpiresAt,
		User:      sess.Principal(),
	}, nil
}
