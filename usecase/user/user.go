package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/pkg/password"
	"github.com/fastygo/accountdesk/repository"
	"github.com/fastygo/accountdesk/usecase/session"
)

type CreateInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// UpdateInput carries optional changes; nil fields are left untouched.
type UpdateInput struct {
	Email    *string
	Password *string
	Role     *string
}

type UseCase struct {
	users    repository.UserRepository
	sessions *session.Store
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions *session.Store, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

func (uc *UseCase) List(ctx context.Context) ([]domain.User, error) {
	return uc.users.List(ctx)
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.User, error) {
	return uc.users.GetByID(ctx, id)
}

func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "username is required")
	}
	role := domain.RoleViewer
	if in.Role != "" {
		parsed, err := domain.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}
	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies the changes. A password or role change revokes the user's
// open sessions so the next request has to log in again. If revocation fails
// the change is stored but the error is returned.
func (uc *UseCase) Update(ctx context.Context, id string, in UpdateInput) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	revoke := false
	if in.Email != nil {
		user.Email = strings.TrimSpace(*in.Email)
	}
	if in.Role != nil {
		role, err := domain.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		revoke = revoke || role != user.Role
		user.Role = role
	}
	if in.Password != nil {
		hash, err := password.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		revoke = true
	}

	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if revoke {
		if err := uc.revokeSessions(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (uc *UseCase) Delete(ctx context.Context, id string) error {
	if err := uc.users.Delete(ctx, id); err != nil {
		return err
	}
	return uc.revokeSessions(ctx, id)
}

func (uc *UseCase) revokeSessions(ctx context.Context, userID string) error {
	removed, err := uc.sessions.InvalidateUser(ctx, userID)
	if err != nil {
		uc.logger.Error("failed to revoke user sessions", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	if removed > 0 {
		uc.logger.Info("user sessions revoked", zap.String("user_id", userID), zap.Int("count", removed))
	}
	return nil
}
