package store

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Option customises a store implementation.
type Option func(*config)

type config struct {
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func newConfig(opts []Option) config {
	cfg := config{
		logger: slog.New(slog.DiscardHandler),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithLogger routes store diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDFunc overrides form id generation (random UUIDs by default).
func WithIDFunc(fn func() string) Option {
	return func(c *config) {
		if fn != nil {
			c.newID = fn
		}
	}
}
