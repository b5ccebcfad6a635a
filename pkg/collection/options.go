package collection

import (
	"github.com/josefjadrny/go-idb/pkg/logging"
)

type Option func(*Collection)

func WithLogger(l logging.Logger) Option {
	return func(c *Collection) {
		c.logger = l
	}
}

// WithIDGenerator replaces the identifier source (default uuid.NewString).
// Collisions are not checked for.
func WithIDGenerator(gen func() string) Option {
	return func(c *Collection) {
		c.newID = gen
	}
}

// WithMetrics records operations into ms, usually shared across collections.
func WithMetrics(ms *Metrics) Option {
	return func(c *Collection) {
		c.metrics = ms
	}
}
