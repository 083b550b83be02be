package repository

import (
	"context"

	"github.com/fastygo/accountdesk/domain"
)

type AccountFilter struct {
	Server  string
	Status  string
	OwnerID string
}

type AccountRepository interface {
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, id string) error
}
