package life

import (
	"context"
	"time"
)

// ServiceInfo describes the managed service container as observed by the
// probe. Fields may be empty when the probe cannot determine them.
type ServiceInfo struct {
	ContainerID string
	Image       string
	Version     string
	Uptime      string
}

// Probe determines whether the managed service is running and healthy.
// It is a precondition gate, not a scheduler: both checks return false on a
// down service or an unreachable daemon rather than failing.
type Probe interface {
	// IsRunning reports whether the service container is up.
	IsRunning(ctx context.Context) (bool, ServiceInfo)

	// IsHealthy performs an HTTP GET against endpoint and reports
	// whether it answered 200 or 302 within timeout.
	IsHealthy(ctx context.Context, endpoint string, timeout time.Duration) bool
}
