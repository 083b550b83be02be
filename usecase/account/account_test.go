package account

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/repository"
	"github.com/fastygo/accountdesk/repository/blob"
	redisrepo "github.com/fastygo/accountdesk/repository/redis"
)

func newUseCase(t *testing.T) *UseCase {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return New(blob.NewAccountRepository(redisrepo.NewKeyValueStore(client)), nil)
}

func TestCreateAppliesDefaults(t *testing.T) {
	uc := newUseCase(t)

	created, err := uc.Create(context.Background(), &domain.Account{Login: 5001, Server: " Live-2 ", Currency: "eur"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.Server != "Live-2" || created.Currency != "EUR" {
		t.Fatalf("fields not normalized: %+v", created)
	}
	if created.Leverage != defaultLeverage || created.Status != domain.AccountStatusActive {
		t.Fatalf("defaults not applied: %+v", created)
	}
}

func TestCreateRejectsInvalidAccounts(t *testing.T) {
	uc := newUseCase(t)

	cases := map[string]*domain.Account{
		"nil":            nil,
		"missing login":  {Server: "Live-1"},
		"missing server": {Login: 1},
		"bad leverage":   {Login: 1, Server: "Live-1", Leverage: -5},
		"bad status":     {Login: 1, Server: "Live-1", Status: "frozen"},
	}
	for name, account := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(context.Background(), account)
			if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
				t.Fatalf("expected invalid error, got %v", err)
			}
		})
	}
}

func TestUpdateAndDelete(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, &domain.Account{Login: 7, Server: "Demo"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	changed := *created
	changed.Status = domain.AccountStatusDisabled
	changed.Balance = 2500
	if _, err := uc.Update(ctx, &changed); err != nil {
		t.Fatalf("update: %v", err)
	}

	disabled, err := uc.List(ctx, repository.AccountFilter{Status: domain.AccountStatusDisabled})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(disabled) != 1 || disabled[0].Balance != 2500 {
		t.Fatalf("unexpected list %v", disabled)
	}

	if err := uc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := uc.Get(ctx, created.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
