package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"docket/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.False(t, exists)
	require.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
	require.Equal(t, "docket", cfg.Redis.KeyPrefix)
	require.Equal(t, 50, cfg.Audit.PendingLimit)
	require.Equal(t, 30, cfg.Audit.RetentionDays)
	require.Equal(t, "docket:audit_lock", cfg.Lock.KeyPrefix)
}

func TestLoadParsesFile(t *testing.T) {
	path := writeConfig(t, `
[redis]
url = "redis://example.internal:6380/2"
key_prefix = "review"

[audit]
pending_limit = 10
retention_days = 7
`)
	t.Setenv("REDIS_URL", "")

	cfg, resolved, exists, err := config.Load(path)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, path, resolved)
	require.Equal(t, "redis://example.internal:6380/2", cfg.Redis.URL)
	require.Equal(t, "review", cfg.Redis.KeyPrefix)
	require.Equal(t, "review:audit_lock", cfg.Lock.KeyPrefix)
	require.Equal(t, 10, cfg.Audit.PendingLimit)
	require.Equal(t, 7, cfg.Audit.RetentionDays)
}

func TestLoadHonorsRedisURLEnv(t *testing.T) {
	path := writeConfig(t, `
[redis]
url = "redis://from-file:6379"
`)
	t.Setenv("REDIS_URL", "redis://from-env:6379")

	cfg, _, _, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "redis://from-env:6379", cfg.Redis.URL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"bad redis url", "[redis]\nurl = \"://nope\"\n"},
		{"zero pending limit", "[audit]\npending_limit = -1\n"},
		{"zero retention", "[audit]\nretention_days = 0\n"},
		{"bad log format", "[logging]\nformat = \"xml\"\n"},
		{"bad log level", "[logging]\nlevel = \"verbose\"\n"},
		{"zero lock ttl", "[lock]\nttl_seconds = 0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.contents)
			_, _, _, err := config.Load(path)
			require.Error(t, err)
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.DataDir = filepath.Join(base, "data")

	require.NoError(t, cfg.EnsureDirectories())
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.DataDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, config.CreateSample(target))

	cfg, _, exists, err := config.Load(target)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, config.Default().Audit.PendingLimit, cfg.Audit.PendingLimit)
}
