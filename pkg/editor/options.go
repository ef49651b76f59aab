package editor

import (
	"log/slog"

	"github.com/goliatone/go-formbuilder/pkg/history"
	"github.com/goliatone/go-formbuilder/pkg/ids"
)

// Option customises an Engine.
type Option func(*config)

type config struct {
	logger         *slog.Logger
	ids            ids.Generator
	historyLimit   int
	collapseOnSave bool
	recordNoops    bool
}

func defaultConfig() config {
	return config{
		logger:         slog.New(slog.DiscardHandler),
		ids:            ids.Default(),
		historyLimit:   history.DefaultLimit,
		collapseOnSave: true,
	}
}

// WithLogger routes engine diagnostics (rejected operations) to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIDGenerator overrides the generator used for new and cloned nodes.
func WithIDGenerator(gen ids.Generator) Option {
	return func(c *config) {
		if gen != nil {
			c.ids = gen
		}
	}
}

// WithHistoryLimit bounds the undo history. A limit <= 0 keeps every entry.
func WithHistoryLimit(limit int) Option {
	return func(c *config) {
		c.historyLimit = limit
	}
}

// WithCollapseHistoryOnSave controls whether SaveState discards the undo
// history. Enabled by default.
func WithCollapseHistoryOnSave(enabled bool) Option {
	return func(c *config) {
		c.collapseOnSave = enabled
	}
}

// WithRecordNoopUpdates makes Update push a history entry even when the patch
// leaves the node unchanged.
func WithRecordNoopUpdates(enabled bool) Option {
	return func(c *config) {
		c.recordNoops = enabled
	}
}
