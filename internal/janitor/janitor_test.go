package janitor_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"docket/internal/audit"
	"docket/internal/auditlock"
	"docket/internal/janitor"
	"docket/internal/testsupport"
)

func newFixture(t *testing.T) (*miniredis.Miniredis, *redis.Client, *audit.Store, *auditlock.Lock) {
	t.Helper()
	mini, client := testsupport.NewRedis(t)
	store := audit.New(client, audit.Options{Prefix: "docket_test"})
	locks := auditlock.New(client, auditlock.Options{Prefix: "docket_test:audit_lock"})
	return mini, client, store, locks
}

// ageReview rewrites a record's reviewed_at so it falls outside retention.
func ageReview(t *testing.T, client *redis.Client, memoryID string, reviewedAt time.Time) {
	t.Helper()
	ctx := context.Background()

	raw, err := client.HGet(ctx, "docket_test:audit_data", memoryID).Result()
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &fields))
	fields["reviewed_at"] = reviewedAt.Format(time.RFC3339)

	aged, err := json.Marshal(fields)
	require.NoError(t, err)
	require.NoError(t, client.HSet(ctx, "docket_test:audit_data", memoryID, aged).Err())
}

func submit(t *testing.T, store *audit.Store, memoryID string) {
	t.Helper()
	added, err := store.Add(context.Background(), audit.Submission{
		MemoryID:      memoryID,
		UserQuery:     "q",
		AgentResponse: "a",
	})
	require.NoError(t, err)
	require.True(t, added)
}

func TestSweepPurgesOldReviewsAndReapsLocks(t *testing.T) {
	ctx := context.Background()
	_, client, store, locks := newFixture(t)

	submit(t, store, "m-old")
	submit(t, store, "m-fresh")
	submit(t, store, "m-pending")

	_, err := store.UpdateStatus(ctx, "m-old", audit.StatusApproved)
	require.NoError(t, err)
	_, err = store.UpdateStatus(ctx, "m-fresh", audit.StatusRejected)
	require.NoError(t, err)
	ageReview(t, client, "m-old", time.Now().UTC().Add(-60*24*time.Hour))

	// A lock held far longer than any sane TTL.
	_, err = locks.Acquire(ctx, "memory:m-pending", 10*time.Minute)
	require.NoError(t, err)

	j := janitor.New(store, locks, janitor.Options{
		Retention:  30 * 24 * time.Hour,
		LockMaxAge: time.Minute,
	})
	j.Sweep(ctx)

	old, err := store.Get(ctx, "m-old")
	require.NoError(t, err)
	require.Nil(t, old)

	fresh, err := store.Get(ctx, "m-fresh")
	require.NoError(t, err)
	require.NotNil(t, fresh)

	pending, err := store.Get(ctx, "m-pending")
	require.NoError(t, err)
	require.NotNil(t, pending)

	require.False(t, locks.IsLocked(ctx, "memory:m-pending"))
}

func TestRunSweepsUntilCancelled(t *testing.T) {
	_, client, store, locks := newFixture(t)

	submit(t, store, "m1")
	_, err := store.UpdateStatus(context.Background(), "m1", audit.StatusApproved)
	require.NoError(t, err)
	ageReview(t, client, "m1", time.Now().UTC().Add(-48*time.Hour))

	j := janitor.New(store, locks, janitor.Options{
		Interval:  5 * time.Millisecond,
		Retention: 24 * time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		j.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		record, err := store.Get(context.Background(), "m1")
		return err == nil && record == nil
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancellation")
	}
}
