package health

import "context"

// DBPinger checks vector index availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker checks an upstream provider's availability.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
