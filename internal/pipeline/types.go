package pipeline

import "time"

// Config holds configuration for batch evaluation
type Config struct {
	WorkerCount int // Number of concurrent evaluation workers
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{WorkerCount: 4}
}

// RunMetrics describes one batch evaluation
type RunMetrics struct {
	Positions int
	Replenish int
	Workers   int
	Duration  time.Duration
}
