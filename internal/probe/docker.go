// Package probe determines whether the managed service container is
// running and whether its HTTP health endpoint answers. Both checks are
// precondition gates: a down container, an unreachable Docker daemon or a
// failing endpoint all report false instead of erroring.
package probe

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	dockerclient "github.com/docker/docker/client"

	"lifeboat/internal/life"
)

// DockerProbe checks container state through the Docker Engine API and
// service health over HTTP.
type DockerProbe struct {
	cli           *dockerclient.Client
	containerName string
	httpClient    *http.Client
	logger        life.Logger
}

// NewDockerProbe creates a probe for the named container. host overrides
// the Docker daemon address; when empty, the client is configured from the
// environment (DOCKER_HOST etc.).
func NewDockerProbe(host, containerName string, logger life.Logger) (*DockerProbe, error) {
	opts := []dockerclient.Opt{
		dockerclient.FromEnv,
		dockerclient.WithAPIVersionNegotiation(),
	}
	if host != "" {
		opts = append(opts, dockerclient.WithHost(host))
	}

	cli, err := dockerclient.NewClientWithOpts(opts...)
	if err != nil {
		return nil, err
	}

	return &DockerProbe{
		cli:           cli,
		containerName: containerName,
		httpClient: &http.Client{
			// Health endpoints may answer with a redirect; count it
			// as alive without following.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}, nil
}

// IsRunning reports whether the service container is up, along with its
// observed metadata. An unreachable daemon reports false.
func (p *DockerProbe) IsRunning(ctx context.Context) (bool, life.ServiceInfo) {
	args := filters.NewArgs(filters.Arg("name", p.containerName))
	list, err := p.cli.ContainerList(ctx, container.ListOptions{Filters: args})
	if err != nil {
		p.logger.Debug("container list failed", "error", err)
		return false, life.ServiceInfo{}
	}

	// The name filter is a substring match; require the exact name.
	for _, c := range list {
		for _, name := range c.Names {
			if strings.TrimPrefix(name, "/") != p.containerName {
				continue
			}
			id := c.ID
			if len(id) > 12 {
				id = id[:12]
			}
			return true, life.ServiceInfo{
				ContainerID: id,
				Image:       c.Image,
				Version:     imageTag(c.Image),
				Uptime:      c.Status,
			}
		}
	}
	return false, life.ServiceInfo{}
}

// IsHealthy performs an HTTP GET against endpoint and reports whether it
// answered 200 or 302 within timeout.
func (p *DockerProbe) IsHealthy(ctx context.Context, endpoint string, timeout time.Duration) bool {
	return checkHealth(ctx, p.httpClient, endpoint, timeout)
}

// imageTag extracts the version tag from an image reference like
// "n8nio/n8n:1.64.0". An untagged image yields "".
func imageTag(image string) string {
	idx := strings.LastIndex(image, ":")
	if idx < 0 || strings.Contains(image[idx:], "/") {
		return ""
	}
	return image[idx+1:]
}

// Compile-time check that DockerProbe implements life.Probe
var _ life.Probe = (*DockerProbe)(nil)
