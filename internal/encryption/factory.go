package encryption

import (
	"fmt"

	"lifeboat/internal/config"
	"lifeboat/internal/life"
)

// NewSealerFromConfig creates a Sealer based on the configuration type.
// An empty type means sealing is disabled and returns nil without error.
func NewSealerFromConfig(cfg config.EncryptionConfig) (life.Sealer, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "age":
		return NewAgeSealer(cfg), nil
	case "test":
		return NewTestSealer(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
