package ports

import "context"

// HealthChecker is one dependency probed by GET /health.
type HealthChecker interface {
	// Ping returns nil when the dependency answers within its own timeout.
	Ping(ctx context.Context) error
	// Name keys the dependency in the health response ("postgresql", "redis").
	Name() string
}
