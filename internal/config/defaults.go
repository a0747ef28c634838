package config

import "time"

const (
	defaultLogDir          = "~/.local/share/docket/logs"
	defaultDataDir         = "~/.local/share/docket/data"
	defaultRedisURL        = "redis://localhost:6379"
	defaultKeyPrefix       = "docket"
	defaultDialTimeout     = 5
	defaultCommandTimeout  = 10
	defaultPendingLimit    = 50
	defaultRetentionDays   = 30
	defaultLockTTLSeconds  = 30
	defaultLockReapMaxAge  = 60
	defaultJanitorInterval = 600
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:  defaultLogDir,
			DataDir: defaultDataDir,
		},
		Redis: Redis{
			URL:            defaultRedisURL,
			KeyPrefix:      defaultKeyPrefix,
			DialTimeout:    defaultDialTimeout,
			CommandTimeout: defaultCommandTimeout,
		},
		Audit: Audit{
			PendingLimit:  defaultPendingLimit,
			RetentionDays: defaultRetentionDays,
		},
		Lock: Lock{
			TTLSeconds:        defaultLockTTLSeconds,
			ReapMaxAgeSeconds: defaultLockReapMaxAge,
		},
		Janitor: Janitor{
			Enabled:         true,
			IntervalSeconds: defaultJanitorInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// DialTimeout returns the Redis dial timeout as a duration.
func (c *Config) DialTimeout() time.Duration {
	return time.Duration(c.Redis.DialTimeout) * time.Second
}

// CommandTimeout returns the Redis command timeout as a duration.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.Redis.CommandTimeout) * time.Second
}

// Retention returns the reviewed-record retention window as a duration.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Audit.RetentionDays) * 24 * time.Hour
}

// LockTTL returns the distributed lock timeout as a duration.
func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.Lock.TTLSeconds) * time.Second
}

// LockReapMaxAge returns the expired-lock reap threshold as a duration.
func (c *Config) LockReapMaxAge() time.Duration {
	return time.Duration(c.Lock.ReapMaxAgeSeconds) * time.Second
}

// JanitorInterval returns the maintenance loop interval as a duration.
func (c *Config) JanitorInterval() time.Duration {
	return time.Duration(c.Janitor.IntervalSeconds) * time.Second
}
