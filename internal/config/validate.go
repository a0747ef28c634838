package config

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRedis(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	if err := c.validateLock(); err != nil {
		return err
	}
	if err := c.validateJanitor(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateRedis() error {
	if _, err := redis.ParseURL(c.Redis.URL); err != nil {
		return fmt.Errorf("redis.url: %w", err)
	}
	if c.Redis.DialTimeout <= 0 {
		return errors.New("redis.dial_timeout must be positive")
	}
	if c.Redis.CommandTimeout <= 0 {
		return errors.New("redis.command_timeout must be positive")
	}
	return nil
}

func (c *Config) validateAudit() error {
	if c.Audit.PendingLimit <= 0 {
		return errors.New("audit.pending_limit must be positive")
	}
	if c.Audit.RetentionDays <= 0 {
		return errors.New("audit.retention_days must be positive")
	}
	return nil
}

func (c *Config) validateLock() error {
	if c.Lock.TTLSeconds <= 0 {
		return errors.New("lock.ttl_seconds must be positive")
	}
	if c.Lock.ReapMaxAgeSeconds <= 0 {
		return errors.New("lock.reap_max_age_seconds must be positive")
	}
	return nil
}

func (c *Config) validateJanitor() error {
	if c.Janitor.Enabled && c.Janitor.IntervalSeconds <= 0 {
		return errors.New("janitor.interval_seconds must be positive when janitor.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
