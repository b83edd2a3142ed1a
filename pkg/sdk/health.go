package convsearch

import (
	"context"

	healthuc "github.com/kailas-cloud/convsearch/internal/usecase/health"
)

// HealthStatus is the aggregated state of the conversation store.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component → "ok"/"error"
}

// Health pings the conversation store.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := c.now()
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	c.obs.observe("health", start, nil, "status", string(report.Status))
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
