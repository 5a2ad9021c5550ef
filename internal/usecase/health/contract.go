package health

import "context"

// StorePinger checks search backend availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks an external provider's availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
