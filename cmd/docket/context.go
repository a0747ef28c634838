package main

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"docket/internal/audit"
	"docket/internal/auditlock"
	"docket/internal/config"
	"docket/internal/logging"
	"docket/internal/redisconn"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withStore dials Redis, builds the queue store and lock service, and runs fn.
// The connection is closed when fn returns.
func (c *commandContext) withStore(ctx context.Context, fn func(context.Context, *audit.Store, *auditlock.Lock) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	client, err := redisconn.Open(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	logger, err := logging.New(logging.Options{
		Level:  "warn",
		Format: "console",
		Output: os.Stderr,
	})
	if err != nil {
		return err
	}

	store := audit.New(client, audit.Options{
		Prefix: cfg.Redis.KeyPrefix,
		Addr:   client.Options().Addr,
		Logger: logger,
	})
	locks := auditlock.New(client, auditlock.Options{
		Prefix: cfg.Lock.KeyPrefix,
		Logger: logger,
	})
	return fn(ctx, store, locks)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
