package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	boltrepo "github.com/fastygo/accountdesk/repository/bolt"
)

type fakePurger struct {
	calls   atomic.Int32
	removed int
	err     error
}

func (f *fakePurger) PurgeExpired(context.Context) (int, error) {
	f.calls.Add(1)
	return f.removed, f.err
}

type onlineFlag bool

func (o onlineFlag) IsOnline() bool { return bool(o) }

func TestSweepSkipsWhenOffline(t *testing.T) {
	purger := &fakePurger{removed: 3}
	j := NewJanitor(purger, onlineFlag(false), nil, JanitorConfig{})

	removed, err := j.Sweep(context.Background())
	if err != nil || removed != 0 {
		t.Fatalf("Sweep = %d, %v", removed, err)
	}
	if purger.calls.Load() != 0 {
		t.Fatal("purge must not run while the store is offline")
	}
}

func TestSweepReportsPurgerResult(t *testing.T) {
	purger := &fakePurger{removed: 2}
	j := NewJanitor(purger, onlineFlag(true), nil, JanitorConfig{Interval: time.Hour})

	removed, err := j.Sweep(context.Background())
	if err != nil || removed != 2 {
		t.Fatalf("Sweep = %d, %v", removed, err)
	}

	purger.err = errors.New("disk full")
	if _, err := j.Sweep(context.Background()); err == nil {
		t.Fatal("expected purge error to surface")
	}
}

func TestSweepRemovesExpiredBoltKeys(t *testing.T) {
	store, err := boltrepo.Open(filepath.Join(t.TempDir(), "kv.db"), "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SetWithExpiry(ctx, "session:short", "{}", 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "platform_users", "[]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	j := NewJanitor(store, nil, nil, JanitorConfig{})
	removed, err := j.Sweep(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("Sweep = %d, %v", removed, err)
	}
	keys, err := store.Keys(ctx, "*")
	if err != nil || len(keys) != 1 || keys[0] != "platform_users" {
		t.Fatalf("remaining keys = %v, %v", keys, err)
	}
}

func TestJanitorStartStop(t *testing.T) {
	j := NewJanitor(&fakePurger{}, nil, nil, JanitorConfig{Interval: time.Second})
	j.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	j.Stop(ctx)
}
