package account

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/repository"
)

const (
	defaultLeverage = 100
	defaultCurrency = "USD"
)

type UseCase struct {
	accounts repository.AccountRepository
	logger   *zap.Logger
}

func New(accounts repository.AccountRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		accounts: accounts,
		logger:   logger,
	}
}

func (uc *UseCase) List(ctx context.Context, filter repository.AccountFilter) ([]domain.Account, error) {
	return uc.accounts.List(ctx, filter)
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accounts.GetByID(ctx, id)
}

func (uc *UseCase) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := normalize(account); err != nil {
		return nil, err
	}
	account.ID = uuid.NewString()
	if err := uc.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	uc.logger.Info("account created", zap.String("account_id", account.ID), zap.Int64("login", account.Login))
	return account, nil
}

func (uc *UseCase) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if account == nil || account.ID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if err := normalize(account); err != nil {
		return nil, err
	}
	if err := uc.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (uc *UseCase) Delete(ctx context.Context, id string) error {
	return uc.accounts.Delete(ctx, id)
}

func normalize(account *domain.Account) error {
	if account == nil {
		return domain.ErrInvalidPayload
	}
	account.Server = strings.TrimSpace(account.Server)
	account.Name = strings.TrimSpace(account.Name)
	account.Currency = strings.ToUpper(strings.TrimSpace(account.Currency))

	if account.Login <= 0 {
		return domain.NewError(domain.ErrCodeInvalid, "login must be positive")
	}
	if account.Server == "" {
		return domain.NewError(domain.ErrCodeInvalid, "server is required")
	}
	if account.Leverage < 0 {
		return domain.NewError(domain.ErrCodeInvalid, "leverage must not be negative")
	}
	if account.Leverage == 0 {
		account.Leverage = defaultLeverage
	}
	if account.Currency == "" {
		account.Currency = defaultCurrency
	}
	switch account.Status {
	case "":
		account.Status = domain.AccountStatusActive
	case domain.AccountStatusActive, domain.AccountStatusDisabled:
	default:
		return domain.NewError(domain.ErrCodeInvalid, "status must be active or disabled")
	}
	return nil
}
