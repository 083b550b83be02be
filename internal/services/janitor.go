package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/accountdesk/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// JanitorConfig controls how frequently expired keys are reclaimed.
type JanitorConfig struct {
	Interval time.Duration
}

// Janitor periodically removes keys whose store-level TTL has passed on
// backends that do not expire keys on their own. Session validity never
// depends on it.
type Janitor struct {
	store   repository.ExpiryPurger
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     JanitorConfig
}

func NewJanitor(store repository.ExpiryPurger, monitor ConnectionHealth, logger *zap.Logger, cfg JanitorConfig) *Janitor {
	if cfg.Interval < time.Second {
		cfg.Interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	j := &Janitor{
		store:   store,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if _, err := j.Sweep(ctx); err != nil {
			j.logger.Error("expired key sweep failed", zap.Error(err))
		}
	})

	return j
}

// Start launches the cron scheduler.
func (j *Janitor) Start() {
	if j == nil || j.cron == nil {
		return
	}
	j.cron.Start()
	j.logger.Info("store janitor started", zap.Duration("interval", j.cfg.Interval))
}

// Stop waits for a running sweep to finish or ctx to expire.
func (j *Janitor) Stop(ctx context.Context) {
	if j == nil || j.cron == nil {
		return
	}
	stopCtx := j.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	j.logger.Info("store janitor stopped")
}

// Sweep runs one purge synchronously and reports how many keys were removed.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	if j == nil || j.store == nil {
		return 0, nil
	}
	if j.monitor != nil && !j.monitor.IsOnline() {
		j.logger.Debug("skipping expired key sweep (offline)")
		return 0, nil
	}

	removed, err := j.store.PurgeExpired(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		j.logger.Info("expired keys purged", zap.Int("count", removed))
	}
	return removed, nil
}
