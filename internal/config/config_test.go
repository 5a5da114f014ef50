package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.StorePath != "newsdex.db" {
		t.Errorf("store path = %s", cfg.StorePath)
	}
	if cfg.Workers != 10 {
		t.Errorf("workers = %d", cfg.Workers)
	}
	if cfg.FetchTimeout != 15*time.Second {
		t.Errorf("fetch timeout = %s", cfg.FetchTimeout)
	}
	if cfg.ServerAddr != ":8080" {
		t.Errorf("server addr = %s", cfg.ServerAddr)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
store:
  path: /tmp/corpus.db
ingest:
  workers: 4
  fetch_timeout: 3s
server:
  addr: ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorePath != "/tmp/corpus.db" || cfg.Workers != 4 {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("fetch timeout = %s", cfg.FetchTimeout)
	}
	if cfg.ServerAddr != ":9090" {
		t.Errorf("server addr = %s", cfg.ServerAddr)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ingest:\n  workers: 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for zero workers")
	}
}
