package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("listen = %q, want default", cfg.Listen)
	}
	if cfg.Horizon() != 730*24*time.Hour {
		t.Errorf("horizon = %v, want 2 years", cfg.Horizon())
	}
}

func TestLoadFileAndNormalize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "listen: \":9090\"\nhorizon_days: 365\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Errorf("listen = %q, want :9090", cfg.Listen)
	}
	if cfg.HorizonDays != 365 {
		t.Errorf("horizon_days = %d, want 365", cfg.HorizonDays)
	}
	// Unset fields fall back to defaults.
	if cfg.DBPath != "bywater.db" {
		t.Errorf("db_path = %q, want default", cfg.DBPath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log_level = %q, want default", cfg.LogLevel)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BYWATER_LISTEN", ":7070")
	t.Setenv("BYWATER_DB_PATH", "/tmp/alt.db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":7070" {
		t.Errorf("listen = %q, want env override", cfg.Listen)
	}
	if cfg.DBPath != "/tmp/alt.db" {
		t.Errorf("db_path = %q, want env override", cfg.DBPath)
	}
}
