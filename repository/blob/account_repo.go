package blob

import (
	"context"
	"strings"

	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/repository"
)

type accountRepository struct {
	doc *document[domain.Account]
}

// NewAccountRepository keeps MT5 accounts in the mt5_accounts document.
func NewAccountRepository(kv repository.KeyValueStore) repository.AccountRepository {
	return &accountRepository{doc: &document[domain.Account]{kv: kv, key: AccountsKey}}
}

func (r *accountRepository) List(ctx context.Context, filter repository.AccountFilter) ([]domain.Account, error) {
	accounts, err := r.doc.load(ctx)
	if err != nil {
		return nil, err
	}
	out := accounts[:0]
	for _, account := range accounts {
		if filter.Server != "" && !strings.EqualFold(account.Server, filter.Server) {
			continue
		}
		if filter.Status != "" && account.Status != filter.Status {
			continue
		}
		if filter.OwnerID != "" && account.OwnerID != filter.OwnerID {
			continue
		}
		out = append(out, account)
	}
	return out, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	accounts, err := r.doc.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].ID == id {
			return &accounts[i], nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	if account == nil || account.ID == "" {
		return domain.ErrInvalidPayload
	}
	return r.doc.mutate(ctx, func(accounts []domain.Account) ([]domain.Account, error) {
		for _, existing := range accounts {
			if sameLogin(existing, *account) {
				return nil, domain.ErrAccountExists
			}
		}
		account.Touch()
		return append(accounts, *account), nil
	})
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	if account == nil || account.ID == "" {
		return domain.ErrInvalidPayload
	}
	return r.doc.mutate(ctx, func(accounts []domain.Account) ([]domain.Account, error) {
		idx := -1
		for i := range accounts {
			if accounts[i].ID == account.ID {
				idx = i
				continue
			}
			if sameLogin(accounts[i], *account) {
				return nil, domain.ErrAccountExists
			}
		}
		if idx < 0 {
			return nil, domain.ErrAccountNotFound
		}
		account.CreatedAt = accounts[idx].CreatedAt
		account.Touch()
		accounts[idx] = *account
		return accounts, nil
	})
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	return r.doc.mutate(ctx, func(accounts []domain.Account) ([]domain.Account, error) {
		for i := range accounts {
			if accounts[i].ID == id {
				return append(accounts[:i], accounts[i+1:]...), nil
			}
		}
		return nil, domain.ErrAccountNotFound
	})
}

func sameLogin(a, b domain.Account) bool {
	return a.Login == b.Login && strings.EqualFold(a.Server, b.Server)
}
