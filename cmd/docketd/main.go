package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"docket/internal/audit"
	"docket/internal/auditlock"
	"docket/internal/config"
	"docket/internal/daemon"
	"docket/internal/logging"
	"docket/internal/redisconn"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	client, err := redisconn.Open(cfg)
	if err != nil {
		log.Fatalf("connect to redis: %v", err)
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

	d, err := daemon.New(cfg, client, store, locks, logger)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		log.Fatalf("start daemon: %v", err)
	}

	<-ctx.Done()
	logger.Info("docketd shutting down")
}
