package janitor

import (
	"context"
	"log/slog"
	"time"

	"docket/internal/audit"
	"docket/internal/auditlock"
	"docket/internal/logging"
)

// Options controls sweep cadence and what each sweep removes.
type Options struct {
	// Interval between sweeps. Defaults to 10 minutes.
	Interval time.Duration
	// Retention is how long reviewed records are kept before purging.
	Retention time.Duration
	// LockMaxAge bounds lock lifetimes during the reaping pass.
	LockMaxAge time.Duration
	Logger     *slog.Logger
}

// Janitor owns the maintenance loop for a queue and its lock namespace.
type Janitor struct {
	store      *audit.Store
	locks      *auditlock.Lock
	interval   time.Duration
	retention  time.Duration
	lockMaxAge time.Duration
	logger     *slog.Logger
}

// New constructs a janitor. The lock service is optional; without one only
// record retention runs.
func New(store *audit.Store, locks *auditlock.Lock, opts Options) *Janitor {
	interval := opts.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	retention := opts.Retention
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	lockMaxAge := opts.LockMaxAge
	if lockMaxAge <= 0 {
		lockMaxAge = time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Janitor{
		store:      store,
		locks:      locks,
		interval:   interval,
		retention:  retention,
		lockMaxAge: lockMaxAge,
		logger:     logger.With(logging.FieldComponent, "janitor"),
	}
}

// Run sweeps once immediately, then on every interval tick until ctx is
// cancelled. Sweep failures are logged and the loop keeps going.
func (j *Janitor) Run(ctx context.Context) {
	j.logger.Info("janitor started",
		"interval", j.interval.String(),
		"retention", j.retention.String())

	j.Sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("janitor stopped")
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep performs one maintenance pass.
func (j *Janitor) Sweep(ctx context.Context) {
	removed, err := j.store.CleanupProcessed(ctx, j.retention)
	if err != nil {
		j.logger.Error("record cleanup failed", "error", err)
	} else if removed > 0 {
		j.logger.Info("purged reviewed records", logging.FieldCount, removed)
	}

	if j.locks != nil {
		j.locks.CleanupExpired(ctx, j.lockMaxAge)
	}
}
