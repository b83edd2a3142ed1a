package health

import "context"

// StorePinger checks conversation store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// CompletionChecker checks completion provider availability.
type CompletionChecker interface {
	HealthCheck(ctx context.Context) error
}
