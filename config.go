package categorizer

import "log/slog"

const (
	// DefaultParallelism processes domains strictly one after another
	DefaultParallelism = 1
)

// Config holds configuration for the Categorizer
type Config struct {
	// Oracle scores text pairs. If nil, uses the token-overlap oracle.
	Oracle SimilarityOracle

	// Logger receives per-domain statistics. If nil, uses slog.Default().
	Logger *slog.Logger

	// Parallelism is the number of domains processed concurrently. If 0, uses DefaultParallelism.
	Parallelism int
}

// applyDefaults fills in default values for unset config fields
func (c *Config) applyDefaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	if c.Parallelism <= 0 {
		c.Parallelism = DefaultParallelism
	}
}
