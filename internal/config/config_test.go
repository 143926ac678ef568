package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Data.Dir != "vmaps" {
		t.Errorf("expected data dir 'vmaps', got %s", cfg.Data.Dir)
	}
	if cfg.Cache.MaxTiles != 256 {
		t.Errorf("expected max_tiles 256, got %d", cfg.Cache.MaxTiles)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vmapkit.yaml")
	content := `
data:
  dir: /srv/vmaps
cache:
  max_tiles: 32
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}

	if cfg.Data.Dir != "/srv/vmaps" {
		t.Errorf("data dir = %s, want /srv/vmaps", cfg.Data.Dir)
	}
	if cfg.Cache.MaxTiles != 32 {
		t.Errorf("max_tiles = %d, want 32", cfg.Cache.MaxTiles)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %s, want debug", cfg.Logging.Level)
	}
}

func TestLoadFromFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vmapkit.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %s, want warn", cfg.Logging.Level)
	}
	if cfg.Data.Dir != "vmaps" {
		t.Errorf("partial file clobbered data dir: %s", cfg.Data.Dir)
	}
	if cfg.Cache.MaxTiles != 256 {
		t.Errorf("partial file clobbered max_tiles: %d", cfg.Cache.MaxTiles)
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vmapkit.yaml")
	if err := os.WriteFile(path, []byte("data: [unclosed"), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	if err := loadFromFile(Default(), path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
