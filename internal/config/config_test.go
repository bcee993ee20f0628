package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.BackendURL != "http://localhost:3061" {
		t.Errorf("BackendURL = %q, want default", cfg.BackendURL)
	}
	if cfg.TimeoutSeconds != 10 {
		t.Errorf("TimeoutSeconds = %d, want 10", cfg.TimeoutSeconds)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config file was not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file permissions = %o, want 0600", perm)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	want := &Config{
		BackendURL:     "http://backend.internal:3061",
		TimeoutSeconds: 5,
		UserID:         42,
		Listen:         "0.0.0.0:9090",
		RefreshCron:    "*/5 * * * *",
		LogLevel:       "debug",
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	cfg := &Config{LogLevel: "verbose"}
	cfg.Normalize()

	if cfg.BackendURL == "" || cfg.Listen == "" || cfg.RefreshCron == "" {
		t.Errorf("Normalize left empty fields: %+v", cfg)
	}
	if cfg.TimeoutSeconds != 10 {
		t.Errorf("TimeoutSeconds = %d, want 10", cfg.TimeoutSeconds)
	}
	if cfg.UserID != 1 {
		t.Errorf("UserID = %d, want 1", cfg.UserID)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("unknown log level should fall back to info, got %q", cfg.LogLevel)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Error("Load(\"\") should fail")
	}
}
