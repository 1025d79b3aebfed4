package engine

import "log/slog"

// DefaultMaxPasses bounds the number of recomputation passes per call.
const DefaultMaxPasses = 32

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMaxPasses overrides DefaultMaxPasses. Values below one are ignored.
func WithMaxPasses(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxPasses = n
		}
	}
}

// WithLogger sets the logger used for convergence diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}
