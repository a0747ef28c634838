package auditlock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"docket/internal/logging"
)

// ErrNotAcquired reports that the lock is currently held by another owner.
var ErrNotAcquired = errors.New("auditlock: lock already held")

// releaseScript deletes the lock key only when the stored token matches, so
// a lock that expired and was re-acquired elsewhere is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Options describes lock construction parameters.
type Options struct {
	// Prefix namespaces lock keys. Defaults to "docket:audit_lock".
	Prefix string
	Logger *slog.Logger
}

// Lock hands out distributed locks over a shared Redis client.
type Lock struct {
	cmd    redis.Cmdable
	prefix string
	logger *slog.Logger
}

// New constructs a lock service over the provided Redis client.
func New(cmd redis.Cmdable, opts Options) *Lock {
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = "docket:audit_lock"
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Lock{
		cmd:    cmd,
		prefix: prefix,
		logger: logger.With(logging.FieldComponent, "auditlock"),
	}
}

func (l *Lock) key(name string) string { return l.prefix + ":" + name }

// Guard represents a held lock. Release it when the critical section ends.
type Guard struct {
	lock  *Lock
	key   string
	token string
}

// Acquire takes the lock for name, expiring after ttl if never released.
// Returns ErrNotAcquired when another holder owns it.
func (l *Lock) Acquire(ctx context.Context, name string, ttl time.Duration) (*Guard, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("auditlock: empty lock name")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	token := uuid.NewString()
	key := l.key(name)
	ok, err := l.cmd.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	l.logger.Debug("acquired lock", logging.FieldLockKey, key)
	return &Guard{lock: l, key: key, token: token}, nil
}

// With runs fn while holding the lock for name, releasing it afterwards.
// ErrNotAcquired propagates so callers can skip contended work.
func (l *Lock) With(ctx context.Context, name string, ttl time.Duration, fn func(context.Context) error) error {
	guard, err := l.Acquire(ctx, name, ttl)
	if err != nil {
		return err
	}
	defer guard.Release(ctx)
	return fn(ctx)
}

// Release deletes the lock if this guard still owns it. Returns false when
// the lock had already expired or changed hands; backend failures are logged
// and reported as false.
func (g *Guard) Release(ctx context.Context) bool {
	if g == nil || g.lock == nil {
		return false
	}
	deleted, err := releaseScript.Run(ctx, g.lock.cmd, []string{g.key}, g.token).Int64()
	if err != nil {
		g.lock.logger.Error("release lock failed", logging.FieldLockKey, g.key, "error", err)
		return false
	}
	if deleted == 0 {
		g.lock.logger.Warn("lock already expired or taken over", logging.FieldLockKey, g.key)
		return false
	}
	g.lock.logger.Debug("released lock", logging.FieldLockKey, g.key)
	return true
}

// IsLocked reports whether name is currently held. Backend failures are
// logged and reported as false.
func (l *Lock) IsLocked(ctx context.Context, name string) bool {
	count, err := l.cmd.Exists(ctx, l.key(name)).Result()
	if err != nil {
		l.logger.Error("lock existence check failed", logging.FieldLockKey, l.key(name), "error", err)
		return false
	}
	return count == 1
}

// ForceRelease unconditionally deletes the lock for name, regardless of
// owner. Administrative use only. Returns false when the lock did not exist
// or the backend call failed.
func (l *Lock) ForceRelease(ctx context.Context, name string) bool {
	key := l.key(name)
	deleted, err := l.cmd.Del(ctx, key).Result()
	if err != nil {
		l.logger.Error("force release failed", logging.FieldLockKey, key, "error", err)
		return false
	}
	if deleted == 0 {
		return false
	}
	l.logger.Warn("forcefully released lock", logging.FieldLockKey, key)
	return true
}

// CleanupExpired reaps abandoned locks: keys without an expiry get one set to
// maxAge, and keys whose remaining TTL exceeds maxAge are deleted. Returns
// how many locks were removed; backend failures are logged and end the sweep
// early.
func (l *Lock) CleanupExpired(ctx context.Context, maxAge time.Duration) int {
	if maxAge <= 0 {
		maxAge = time.Minute
	}

	cleaned := 0
	var cursor uint64
	for {
		keys, next, err := l.cmd.Scan(ctx, cursor, l.prefix+":*", 100).Result()
		if err != nil {
			l.logger.Error("lock scan failed", "error", err)
			return cleaned
		}
		for _, key := range keys {
			ttl, err := l.cmd.TTL(ctx, key).Result()
			if err != nil {
				l.logger.Error("lock ttl check failed", logging.FieldLockKey, key, "error", err)
				continue
			}
			switch {
			case ttl == -1:
				// No expiry set; cap its lifetime.
				if err := l.cmd.Expire(ctx, key, maxAge).Err(); err != nil {
					l.logger.Error("lock expire failed", logging.FieldLockKey, key, "error", err)
				}
			case ttl > maxAge:
				if err := l.cmd.Del(ctx, key).Err(); err != nil {
					l.logger.Error("lock delete failed", logging.FieldLockKey, key, "error", err)
					continue
				}
				cleaned++
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if cleaned > 0 {
		l.logger.Info("cleaned up expired locks", logging.FieldCount, cleaned)
	}
	return cleaned
}
