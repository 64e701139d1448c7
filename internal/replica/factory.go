package replica

import (
	"context"
	"fmt"

	"lifeboat/internal/config"
	"lifeboat/internal/life"
)

// NewReplicaFromConfig creates a Replica implementation based on the
// replica config type. An empty type means no replica is configured and
// returns nil without error.
func NewReplicaFromConfig(ctx context.Context, cfg config.ReplicaConfig) (life.Replica, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "memory":
		return NewMemoryReplica(cfg.Name), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem replica requires fs_root to be set")
		}
		return NewFileSystemReplica(cfg.Name, cfg.FSRoot)
	case "s3":
		return NewS3Replica(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown replica type: %s", cfg.Type)
	}
}
