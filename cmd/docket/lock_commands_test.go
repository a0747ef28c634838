package main

import (
	"context"
	"testing"
	"time"
)

func TestLockStatusAndRelease(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"lock", "status", "memory:m1"}, env.configPath)
	if err != nil {
		t.Fatalf("lock status: %v", err)
	}
	requireContains(t, out, "is free")

	if _, err := env.locks.Acquire(context.Background(), "memory:m1", 30*time.Second); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	out, _, err = runCLI(t, []string{"lock", "status", "memory:m1"}, env.configPath)
	if err != nil {
		t.Fatalf("lock status held: %v", err)
	}
	requireContains(t, out, "is held")

	out, _, err = runCLI(t, []string{"lock", "release", "memory:m1"}, env.configPath)
	if err != nil {
		t.Fatalf("lock release: %v", err)
	}
	requireContains(t, out, "Released lock memory:m1")

	out, _, err = runCLI(t, []string{"lock", "release", "memory:m1"}, env.configPath)
	if err != nil {
		t.Fatalf("lock release again: %v", err)
	}
	requireContains(t, out, "was not held")
}

func TestLockReap(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, err := env.locks.Acquire(context.Background(), "memory:overheld", 10*time.Minute); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	out, _, err := runCLI(t, []string{"lock", "reap", "--max-age", "60"}, env.configPath)
	if err != nil {
		t.Fatalf("lock reap: %v", err)
	}
	requireContains(t, out, "Cleaned up 1 locks")
}
