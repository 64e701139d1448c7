package catalog

import (
	"fmt"
	"path/filepath"

	"lifeboat/internal/config"
	"lifeboat/internal/life"
)

// NewCatalogFromConfig creates a Catalog based on the catalog config type.
func NewCatalogFromConfig(cfg config.CatalogConfig, baseDir string) (life.Catalog, error) {
	switch cfg.Type {
	case "sqlite", "":
		path := cfg.Path
		if path == "" {
			path = filepath.Join(baseDir, "catalog.db")
		}
		return New(path)
	case "memory":
		return New(":memory:")
	default:
		return nil, fmt.Errorf("unknown catalog type: %s", cfg.Type)
	}
}
