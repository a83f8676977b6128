package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Engine.CacheTimeoutMS != 5000 {
		t.Errorf("default cache timeout = %d, want 5000", cfg.Engine.CacheTimeoutMS)
	}
	if cfg.Engine.MaxFileSize != 1_000_000 {
		t.Errorf("default max file size = %d, want 1000000", cfg.Engine.MaxFileSize)
	}
	if cfg.Engine.CacheTimeout() != 5*time.Second {
		t.Errorf("CacheTimeout() = %v, want 5s", cfg.Engine.CacheTimeout())
	}
	if cfg.Watch.Debounce != 300*time.Millisecond {
		t.Errorf("default debounce = %v", cfg.Watch.Debounce)
	}
}

func TestLoadAppliesDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pylens.toml")
	content := `
version = 1

[engine]
cache_timeout_ms = 250
max_file_size = 2048
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.CacheTimeoutMS != 250 {
		t.Errorf("cache_timeout_ms = %d, want 250", cfg.Engine.CacheTimeoutMS)
	}
	if cfg.Engine.MaxFileSize != 2048 {
		t.Errorf("max_file_size = %d, want 2048", cfg.Engine.MaxFileSize)
	}
	if cfg.Engine.ParseBudgetMS != 2000 {
		t.Errorf("parse_budget_ms default not applied: %d", cfg.Engine.ParseBudgetMS)
	}
	if len(cfg.Exclude.Dirs) == 0 {
		t.Error("exclude dirs default not applied")
	}
}

func TestLoadRejectsBadVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pylens.toml")
	if err := os.WriteFile(path, []byte("version = 7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestLoadRejectsNegativeTimeout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pylens.toml")
	content := "[engine]\ncache_timeout_ms = -1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for negative cache timeout")
	}
}
