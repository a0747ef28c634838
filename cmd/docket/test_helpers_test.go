package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"docket/internal/audit"
	"docket/internal/auditlock"
	"docket/internal/testsupport"
)

type cliTestEnv struct {
	mini       *miniredis.Miniredis
	store      *audit.Store
	locks      *auditlock.Lock
	configPath string
	dataDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	mini, client := testsupport.NewRedis(t)
	t.Setenv("REDIS_URL", "redis://"+mini.Addr())

	logDir := filepath.Join(base, "logs")
	dataDir := filepath.Join(base, "data")
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(
		"[paths]\nlog_dir = %q\ndata_dir = %q\n\n[redis]\nkey_prefix = \"docket_test\"\n",
		logDir, dataDir,
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		mini:       mini,
		store:      audit.New(client, audit.Options{Prefix: "docket_test"}),
		locks:      auditlock.New(client, auditlock.Options{Prefix: "docket_test:audit_lock"}),
		configPath: configPath,
		dataDir:    dataDir,
	}
}

func (env *cliTestEnv) submit(t *testing.T, memoryID, query, response string) {
	t.Helper()
	added, err := env.store.Add(context.Background(), audit.Submission{
		MemoryID:      memoryID,
		UserQuery:     query,
		AgentResponse: response,
	})
	if err != nil {
		t.Fatalf("add %s: %v", memoryID, err)
	}
	if !added {
		t.Fatalf("add %s: duplicate", memoryID)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
