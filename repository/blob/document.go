// Package blob stores whole collections as single JSON documents in the
// key-value store. Every operation reads and rewrites the full document.
package blob

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/repository"
)

const (
	UsersKey    = "platform_users"
	AccountsKey = "mt5_accounts"
)

// document serialises writers inside this process only; concurrent writers in
// other processes still race on the whole blob.
type document[T any] struct {
	kv  repository.KeyValueStore
	key string
	mu  sync.Mutex
}

func (d *document[T]) load(ctx context.Context) ([]T, error) {
	raw, err := d.kv.Get(ctx, d.key)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return []T{}, nil
		}
		return nil, domain.StoreUnavailable(err)
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt "+d.key+" document", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (d *document[T]) save(ctx context.Context, items []T) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := d.kv.Set(ctx, d.key, string(payload)); err != nil {
		return domain.StoreUnavailable(err)
	}
	return nil
}

// mutate loads the document, applies fn and writes the result back.
func (d *document[T]) mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	items, err := d.load(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(items)
	if err != nil {
		return err
	}
	return d.save(ctx, updated)
}
