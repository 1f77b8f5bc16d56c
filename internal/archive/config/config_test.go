package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	yaml := `
data_dir: /srv/mempool
source:
  base_url: http://localhost:8000
  timeout: 30s
  progress: true
compression:
  algorithm: zstd
  level: 5
ingest:
  workers: 4
retention:
  max_age: 8760h
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DataDir != "/srv/mempool" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Source.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", cfg.Source.BaseURL)
	}
	if cfg.Source.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Source.Timeout)
	}
	if !cfg.Source.Progress {
		t.Error("Progress should be true")
	}
	if cfg.Compression.Algorithm != "zstd" || cfg.Compression.Level != 5 {
		t.Errorf("Compression = %+v", cfg.Compression)
	}
	if cfg.Ingest.Workers != 4 {
		t.Errorf("Workers = %d", cfg.Ingest.Workers)
	}
	if cfg.Retention.MaxAge != 8760*time.Hour {
		t.Errorf("MaxAge = %v", cfg.Retention.MaxAge)
	}

	// Unset fields keep their defaults.
	if cfg.Query.MemoryLimit != "2GB" {
		t.Errorf("MemoryLimit = %q, want default", cfg.Query.MemoryLimit)
	}
}

func TestValidate_Errors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = ""
	cfg.Compression.Algorithm = "brotli"
	cfg.Ingest.Workers = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	for _, sub := range []string{"sourcelog", "transaction-data", "transactions"} {
		info, err := os.Stat(filepath.Join(cfg.DataDir, sub))
		if err != nil || !info.IsDir() {
			t.Errorf("missing kind directory %s", sub)
		}
	}
}
