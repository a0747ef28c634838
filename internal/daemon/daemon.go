package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/redis/go-redis/v9"

	"docket/internal/audit"
	"docket/internal/auditlock"
	"docket/internal/config"
	"docket/internal/janitor"
	"docket/internal/logging"
)

// Daemon owns the background maintenance lifecycle for a docket deployment.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	client *redis.Client
	store  *audit.Store
	locks  *auditlock.Lock

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New builds a daemon over an established Redis connection.
func New(cfg *config.Config, client *redis.Client, store *audit.Store, locks *auditlock.Lock, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if client == nil || store == nil {
		return nil, errors.New("redis client and store are required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "docketd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		store:    store,
		locks:    locks,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, verifies Redis connectivity, and launches
// the janitor when enabled.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another docket daemon instance is already running")
	}

	if !d.store.HealthCheck(ctx) {
		_ = d.lock.Unlock()
		return fmt.Errorf("redis unreachable at %s", d.client.Options().Addr)
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})

	if d.cfg.Janitor.Enabled {
		j := janitor.New(d.store, d.locks, janitor.Options{
			Interval:   d.cfg.JanitorInterval(),
			Retention:  d.cfg.Retention(),
			LockMaxAge: d.cfg.LockReapMaxAge(),
			Logger:     d.logger,
		})
		go func() {
			defer close(d.done)
			j.Run(runCtx)
		}()
	} else {
		close(d.done)
		d.logger.Info("janitor disabled, daemon idle")
	}

	d.running.Store(true)
	d.logger.Info("docket daemon started", "lock", d.lockPath)
	return nil
}

// Stop halts background processing and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.done != nil {
		<-d.done
		d.done = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", "error", err)
	}
	d.running.Store(false)
	d.logger.Info("docket daemon stopped")
}

// Close stops the daemon and closes the Redis connection.
func (d *Daemon) Close() error {
	d.Stop()
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}
