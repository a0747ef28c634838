package auditlock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"docket/internal/auditlock"
	"docket/internal/testsupport"
)

func newTestLock(t *testing.T) (*miniredis.Miniredis, *auditlock.Lock) {
	t.Helper()
	mini, client := testsupport.NewRedis(t)
	lock := auditlock.New(client, auditlock.Options{Prefix: "docket_test:audit_lock"})
	return mini, lock
}

func TestAcquireAndRelease(t *testing.T) {
	ctx := context.Background()
	mini, lock := newTestLock(t)

	guard, err := lock.Acquire(ctx, "memory:m1", 30*time.Second)
	require.NoError(t, err)
	require.True(t, lock.IsLocked(ctx, "memory:m1"))
	require.True(t, mini.Exists("docket_test:audit_lock:memory:m1"))

	require.True(t, guard.Release(ctx))
	require.False(t, lock.IsLocked(ctx, "memory:m1"))

	// Second release is a no-op.
	require.False(t, guard.Release(ctx))
}

func TestAcquireContended(t *testing.T) {
	ctx := context.Background()
	_, lock := newTestLock(t)

	first, err := lock.Acquire(ctx, "memory:m1", 30*time.Second)
	require.NoError(t, err)

	_, err = lock.Acquire(ctx, "memory:m1", 30*time.Second)
	require.ErrorIs(t, err, auditlock.ErrNotAcquired)

	// Different names do not contend.
	other, err := lock.Acquire(ctx, "memory:m2", 30*time.Second)
	require.NoError(t, err)

	first.Release(ctx)
	other.Release(ctx)
}

func TestAcquireRequiresName(t *testing.T) {
	_, lock := newTestLock(t)

	_, err := lock.Acquire(context.Background(), "  ", 30*time.Second)
	require.Error(t, err)
}

func TestReleaseDoesNotStealTakenOverLock(t *testing.T) {
	ctx := context.Background()
	mini, lock := newTestLock(t)

	stale, err := lock.Acquire(ctx, "memory:m1", 50*time.Millisecond)
	require.NoError(t, err)

	// The TTL lapses and another worker takes the lock.
	mini.FastForward(100 * time.Millisecond)
	fresh, err := lock.Acquire(ctx, "memory:m1", 30*time.Second)
	require.NoError(t, err)

	require.False(t, stale.Release(ctx))
	require.True(t, lock.IsLocked(ctx, "memory:m1"))

	require.True(t, fresh.Release(ctx))
}

func TestWithRunsUnderLock(t *testing.T) {
	ctx := context.Background()
	_, lock := newTestLock(t)

	ran := false
	err := lock.With(ctx, "memory:m1", 30*time.Second, func(ctx context.Context) error {
		ran = true
		require.True(t, lock.IsLocked(ctx, "memory:m1"))
		_, err := lock.Acquire(ctx, "memory:m1", time.Second)
		require.ErrorIs(t, err, auditlock.ErrNotAcquired)
		return nil
	})
	require.NoError(t, err)
	require.True(t, ran)
	require.False(t, lock.IsLocked(ctx, "memory:m1"))
}

func TestForceRelease(t *testing.T) {
	ctx := context.Background()
	_, lock := newTestLock(t)

	require.False(t, lock.ForceRelease(ctx, "memory:m1"))

	_, err := lock.Acquire(ctx, "memory:m1", 30*time.Second)
	require.NoError(t, err)

	require.True(t, lock.ForceRelease(ctx, "memory:m1"))
	require.False(t, lock.IsLocked(ctx, "memory:m1"))
}

func TestCleanupExpired(t *testing.T) {
	ctx := context.Background()
	mini, lock := newTestLock(t)

	// Held within bounds: TTL below maxAge, untouched.
	_, err := lock.Acquire(ctx, "memory:recent", 30*time.Second)
	require.NoError(t, err)

	// TTL far beyond maxAge: reaped.
	_, err = lock.Acquire(ctx, "memory:overheld", 10*time.Minute)
	require.NoError(t, err)

	// No expiry at all (written outside Acquire): gets one capped to maxAge.
	require.NoError(t, mini.Set("docket_test:audit_lock:memory:orphan", "token"))

	cleaned := lock.CleanupExpired(ctx, time.Minute)
	require.Equal(t, 1, cleaned)

	require.True(t, lock.IsLocked(ctx, "memory:recent"))
	require.False(t, lock.IsLocked(ctx, "memory:overheld"))
	require.True(t, lock.IsLocked(ctx, "memory:orphan"))
	require.Greater(t, mini.TTL("docket_test:audit_lock:memory:orphan"), time.Duration(0))
}
