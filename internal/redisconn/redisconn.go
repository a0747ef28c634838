package redisconn

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"docket/internal/config"
)

// Open builds a Redis client from the configured connection URL. It does not
// dial eagerly; the first command establishes the connection.
func Open(cfg *config.Config) (*redis.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redisconn: config is nil")
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = cfg.DialTimeout()
	opts.ReadTimeout = cfg.CommandTimeout()
	opts.WriteTimeout = cfg.CommandTimeout()
	return redis.NewClient(opts), nil
}
