// Package config provides mcptrace's configuration schema: the proxy and
// monitor settings loaded from an optional config file, environment
// variables, and CLI flags, in that layered order.
package config

import "time"

// Config is the top-level configuration for both mcptrace subcommands.
// Only the settings a CLI flag does not already cover live here; CLI
// flags always take precedence (applied by the caller after Load).
type Config struct {
	// IPCSocket is the unix socket path the monitor binds and the proxy
	// dials. Defaults to "/tmp/mcp-monitor.sock".
	IPCSocket string `yaml:"ipc_socket" mapstructure:"ipc_socket"`

	// MaxLogs is the monitor's rolling log cap. Defaults to 10000.
	MaxLogs int `yaml:"max_logs" mapstructure:"max_logs"`

	// QueueCapacity, OverflowCap, InitialBackoff and MaxBackoff are loaded,
	// defaulted and validated, but they are not passed to the buffered
	// client: it uses its own fixed values (queue 1000, overflow 10000,
	// backoff 1s doubling to 30s), which these defaults equal. Changing
	// them does not change the client's behaviour.

	// QueueCapacity mirrors the buffered client's in-process channel
	// capacity. Defaults to 1000.
	QueueCapacity int `yaml:"queue_capacity" mapstructure:"queue_capacity"`

	// OverflowCap mirrors the buffered client's overflow buffer capacity.
	// Defaults to 10000.
	OverflowCap int `yaml:"overflow_cap" mapstructure:"overflow_cap"`

	// InitialBackoff mirrors the buffered client's first reconnect delay.
	// Defaults to "1s".
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`

	// MaxBackoff mirrors the cap on the buffered client's exponential
	// backoff. Defaults to "30s".
	MaxBackoff time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`

	// StatsInterval is the bridge's stats-tick period. Defaults to "1s".
	StatsInterval time.Duration `yaml:"stats_interval" mapstructure:"stats_interval"`

	// TickRate is the monitor UI's input-poll/redraw period. Defaults to
	// "250ms".
	TickRate time.Duration `yaml:"tick_rate" mapstructure:"tick_rate"`

	// MetricsAddr, if non-empty, serves Prometheus metrics at /metrics on
	// this address. Empty disables the listener (opt-in, per spec §6).
	MetricsAddr string `yaml:"metrics_addr" mapstructure:"metrics_addr"`
}

// SetDefaults fills any zero-valued field with its documented default.
func (c *Config) SetDefaults() {
	if c.IPCSocket == "" {
		c.IPCSocket = "/tmp/mcp-monitor.sock"
	}
	if c.MaxLogs == 0 {
		c.MaxLogs = 10_000
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = 1_000
	}
	if c.OverflowCap == 0 {
		c.OverflowCap = 10_000
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = 1 * time.Second
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = 30 * time.Second
	}
	if c.StatsInterval == 0 {
		c.StatsInterval = 1 * time.Second
	}
	if c.TickRate == 0 {
		c.TickRate = 250 * time.Millisecond
	}
}
