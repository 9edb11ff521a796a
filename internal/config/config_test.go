package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	want := DefaultConfig()
	if cfg.Port != want.Port || cfg.TickInterval != want.TickInterval || cfg.BindIP != want.BindIP {
		t.Fatalf("defaults not preserved: %+v", cfg)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: 9000\ntick_interval: 5s\nremote_ttl_ticks: 4\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("port overlay not applied: %d", cfg.Port)
	}
	if cfg.TickInterval != 5*time.Second {
		t.Fatalf("tick_interval overlay not applied: %v", cfg.TickInterval)
	}
	if cfg.RemoteTTLTicks != 4 {
		t.Fatalf("remote_ttl_ticks overlay not applied: %d", cfg.RemoteTTLTicks)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log_level overlay not applied: %s", cfg.LogLevel)
	}
	// Untouched keys keep defaults.
	if cfg.BindIP != "127.0.0.1" || cfg.Protocol != "http" {
		t.Fatalf("unrelated defaults changed: %+v", cfg)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tick_interval: banana\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("bad duration should error")
	}
}

func TestRemoteTTL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickInterval = 3 * time.Second
	cfg.RemoteTTLTicks = 8
	if got := cfg.RemoteTTL(); got != 24*time.Second {
		t.Fatalf("remote ttl = %v, want 24s", got)
	}
}
