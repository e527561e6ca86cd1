package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate checks cross-field invariants that a struct tag can't express
// on its own (mutual exclusion, path shape). mcptrace's config surface
// is small enough that hand-written checks are clearer than a tag-driven
// validator library — see DESIGN.md for why validator/v10 was dropped.
func (c *Config) Validate() error {
	var errs []error

	if c.IPCSocket == "" {
		errs = append(errs, errors.New("ipc_socket must not be empty"))
	} else if !filepath.IsAbs(c.IPCSocket) {
		errs = append(errs, fmt.Errorf("ipc_socket must be an absolute path, got %q", c.IPCSocket))
	}

	if c.MaxLogs <= 0 {
		errs = append(errs, fmt.Errorf("max_logs must be positive, got %d", c.MaxLogs))
	}
	if c.QueueCapacity <= 0 {
		errs = append(errs, fmt.Errorf("queue_capacity must be positive, got %d", c.QueueCapacity))
	}
	if c.OverflowCap <= 0 {
		errs = append(errs, fmt.Errorf("overflow_cap must be positive, got %d", c.OverflowCap))
	}
	if c.InitialBackoff <= 0 {
		errs = append(errs, fmt.Errorf("initial_backoff must be positive, got %s", c.InitialBackoff))
	}
	if c.MaxBackoff < c.InitialBackoff {
		errs = append(errs, fmt.Errorf("max_backoff (%s) must be >= initial_backoff (%s)", c.MaxBackoff, c.InitialBackoff))
	}
	if c.StatsInterval <= 0 {
		errs = append(errs, fmt.Errorf("stats_interval must be positive, got %s", c.StatsInterval))
	}
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate must be positive, got %s", c.TickRate))
	}

	return errors.Join(errs...)
}
