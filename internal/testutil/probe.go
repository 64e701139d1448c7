package testutil

import (
	"context"
	"time"

	"lifeboat/internal/life"
)

// StubProbe reports a canned service state.
type StubProbe struct {
	Running bool
	Info    life.ServiceInfo
	Healthy bool
}

var _ life.Probe = (*StubProbe)(nil)

func (p *StubProbe) IsRunning(ctx context.Context) (bool, life.ServiceInfo) {
	if !p.Running {
		return false, life.ServiceInfo{}
	}
	return true, p.Info
}

func (p *StubProbe) IsHealthy(ctx context.Context, endpoint string, timeout time.Duration) bool {
	return p.Healthy
}
