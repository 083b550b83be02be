package blob

import (
	"context"
	"strings"

	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/repository"
)

type userRepository struct {
	doc *document[domain.User]
}

// NewUserRepository keeps platform users in the platform_users document.
func NewUserRepository(kv repository.KeyValueStore) repository.UserRepository {
	return &userRepository{doc: &document[domain.User]{kv: kv, key: UsersKey}}
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.doc.load(ctx)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := r.doc.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	users, err := r.doc.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return &users[i], nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" || user.Username == "" {
		return domain.ErrInvalidPayload
	}
	return r.doc.mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		for _, existing := range users {
			if strings.EqualFold(existing.Username, user.Username) {
				return nil, domain.ErrUsernameTaken
			}
		}
		user.Touch()
		return append(users, *user), nil
	})
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	return r.doc.mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		for i := range users {
			if users[i].ID != user.ID {
				continue
			}
			user.CreatedAt = users[i].CreatedAt
			user.Touch()
			users[i] = *user
			return users, nil
		}
		return nil, domain.ErrUserNotFound
	})
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.doc.mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		for i := range users {
			if users[i].ID == id {
				return append(users[:i], users[i+1:]...), nil
			}
		}
		return nil, domain.ErrUserNotFound
	})
}
