package daemon_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"docket/internal/audit"
	"docket/internal/auditlock"
	"docket/internal/daemon"
	"docket/internal/testsupport"
)

func newTestDaemon(t *testing.T) *daemon.Daemon {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	cfg.Janitor.Enabled = true
	cfg.Janitor.IntervalSeconds = 1

	_, client := testsupport.NewRedis(t)
	store := audit.New(client, audit.Options{Prefix: cfg.Redis.KeyPrefix})
	locks := auditlock.New(client, auditlock.Options{Prefix: cfg.Lock.KeyPrefix})

	d, err := daemon.New(cfg, client, store, locks, nil)
	require.NoError(t, err)
	return d
}

func TestStartAndStop(t *testing.T) {
	d := newTestDaemon(t)

	require.NoError(t, d.Start(context.Background()))
	require.Error(t, d.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Stop()
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
	}

	// Restartable after a clean stop.
	require.NoError(t, d.Start(context.Background()))
	d.Stop()
}

func TestStartRejectsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Janitor.Enabled = false

	_, client := testsupport.NewRedis(t)
	store := audit.New(client, audit.Options{Prefix: cfg.Redis.KeyPrefix})
	locks := auditlock.New(client, auditlock.Options{Prefix: cfg.Lock.KeyPrefix})

	first, err := daemon.New(cfg, client, store, locks, nil)
	require.NoError(t, err)
	require.NoError(t, first.Start(context.Background()))
	defer first.Stop()

	second, err := daemon.New(cfg, client, store, locks, nil)
	require.NoError(t, err)
	require.ErrorContains(t, second.Start(context.Background()), "already running")
}

func TestStartFailsWithoutRedis(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	mini, client := testsupport.NewRedis(t)
	store := audit.New(client, audit.Options{Prefix: cfg.Redis.KeyPrefix})

	d, err := daemon.New(cfg, client, store, nil, nil)
	require.NoError(t, err)

	mini.Close()
	require.ErrorContains(t, d.Start(context.Background()), "unreachable")
}
