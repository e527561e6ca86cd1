package config

import (
	"testing"
	"time"
)

func TestConfigSetDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()

	if cfg.IPCSocket != "/tmp/mcp-monitor.sock" {
		t.Errorf("IPCSocket = %q, want default", cfg.IPCSocket)
	}
	if cfg.MaxLogs != 10_000 {
		t.Errorf("MaxLogs = %d, want 10000", cfg.MaxLogs)
	}
	if cfg.QueueCapacity != 1_000 {
		t.Errorf("QueueCapacity = %d, want 1000", cfg.QueueCapacity)
	}
	if cfg.OverflowCap != 10_000 {
		t.Errorf("OverflowCap = %d, want 10000", cfg.OverflowCap)
	}
	if cfg.InitialBackoff != time.Second {
		t.Errorf("InitialBackoff = %s, want 1s", cfg.InitialBackoff)
	}
	if cfg.MaxBackoff != 30*time.Second {
		t.Errorf("MaxBackoff = %s, want 30s", cfg.MaxBackoff)
	}
	if cfg.TickRate != 250*time.Millisecond {
		t.Errorf("TickRate = %s, want 250ms", cfg.TickRate)
	}
}

func TestConfigSetDefaultsPreservesExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := Config{IPCSocket: "/var/run/mcp.sock", MaxLogs: 500}
	cfg.SetDefaults()

	if cfg.IPCSocket != "/var/run/mcp.sock" {
		t.Errorf("IPCSocket overwritten: %q", cfg.IPCSocket)
	}
	if cfg.MaxLogs != 500 {
		t.Errorf("MaxLogs overwritten: %d", cfg.MaxLogs)
	}
}

func TestValidateRejectsRelativeSocketPath(t *testing.T) {
	t.Parallel()

	cfg := Config{IPCSocket: "relative.sock"}
	cfg.SetDefaults()
	cfg.IPCSocket = "relative.sock"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for relative ipc_socket")
	}
}

func TestValidateRejectsMaxBackoffBelowInitial(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()
	cfg.MaxBackoff = 500 * time.Millisecond

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for max_backoff < initial_backoff")
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}
