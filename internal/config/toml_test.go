package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Toss.Source != nil || cfg.Spin.SpinRate != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[toss]
source = "local"
timeout = "3s"
reveal-delay = "250ms"
fps = 30

[spin]
spin-rate = 9.5
landing-factor = 0.1

[serve]
addr = ":5001"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Toss.Source == nil || *cfg.Toss.Source != "local" {
		t.Fatalf("unexpected source: %v", cfg.Toss.Source)
	}
	if cfg.Toss.Timeout == nil || cfg.Toss.Timeout.Duration != 3*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.Toss.Timeout)
	}
	if cfg.Toss.RevealDelay == nil || cfg.Toss.RevealDelay.Duration != 250*time.Millisecond {
		t.Fatalf("unexpected reveal delay: %v", cfg.Toss.RevealDelay)
	}
	if cfg.Toss.FPS == nil || *cfg.Toss.FPS != 30 {
		t.Fatalf("unexpected fps: %v", cfg.Toss.FPS)
	}
	if cfg.Spin.SpinRate == nil || *cfg.Spin.SpinRate != 9.5 {
		t.Fatalf("unexpected spin rate: %v", cfg.Spin.SpinRate)
	}
	if cfg.Spin.IdleRate != nil {
		t.Fatalf("expected idle rate unset")
	}
	if cfg.Serve.Addr == nil || *cfg.Serve.Addr != ":5001" {
		t.Fatalf("unexpected addr: %v", cfg.Serve.Addr)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
}

func TestLoadConfigBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[toss]\ntimeout = \"soon\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error for bad duration")
	}
}

func TestDefaultPathsHonorXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	if got := DefaultConfigPath(); got != filepath.Join(dir, "cfg", "tuicoin", "config.toml") {
		t.Fatalf("unexpected config path %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join(dir, "data", "tuicoin", "history.db") {
		t.Fatalf("unexpected db path %s", got)
	}
	if got := DefaultLogPath(); got != filepath.Join(dir, "state", "tuicoin", "tuicoin.log") {
		t.Fatalf("unexpected log path %s", got)
	}
}
