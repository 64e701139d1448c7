package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for lifeboat.
type Config struct {
	HostID     string           `toml:"host_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Service    ServiceConfig    `toml:"service"`
	Snapshots  SnapshotsConfig  `toml:"snapshots"`
	Catalog    CatalogConfig    `toml:"catalog"`
	Replica    ReplicaConfig    `toml:"replica"`
	Encryption EncryptionConfig `toml:"encryption"`
	Profiles   ProfilesConfig   `toml:"profiles"`
}

// ServiceConfig describes the managed service container and its live state.
type ServiceConfig struct {
	ContainerName  string `toml:"container_name"`
	DockerHost     string `toml:"docker_host,omitempty"` // empty = from environment
	HealthURL      string `toml:"health_url"`
	ProbeTimeoutMS int    `toml:"probe_timeout_ms"`
	DataFile       string `toml:"data_file"` // live data-store file
	CacheDir       string `toml:"cache_dir"` // live auxiliary cache dir
}

// SnapshotsConfig holds snapshot store settings.
type SnapshotsConfig struct {
	Dir           string `toml:"dir,omitempty"` // default <base_dir>/snapshots
	RetentionDays int    `toml:"retention_days"`
}

// CatalogConfig represents configuration for the operations journal.
// This uses a tagged union pattern - the Type field determines which other
// fields are relevant.
type CatalogConfig struct {
	Type string `toml:"type"`           // "sqlite" or "memory"
	Path string `toml:"path,omitempty"` // only used for type=sqlite; default <base_dir>/catalog.db
}

// ReplicaConfig represents configuration for the optional off-machine
// snapshot replica. This uses a tagged union pattern - the Type field
// determines which other fields are relevant. An empty Type disables the
// replica.
type ReplicaConfig struct {
	Type string `toml:"type,omitempty"` // "", "filesystem", "memory" or "s3"
	Name string `toml:"name,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"` // for S3-compatible stores
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used to seal replica
// uploads. An empty Type disables sealing.
type EncryptionConfig struct {
	Type          string `toml:"type,omitempty"` // "", "age" or "test"
	RecipientPath string `toml:"recipient_path,omitempty"`
	IdentityPath  string `toml:"identity_path,omitempty"`
}

// ProfilesConfig holds profile store settings.
type ProfilesConfig struct {
	Dir string `toml:"dir,omitempty"` // default <base_dir>/profiles
}

// NewConfig creates a Config with the provided identity and sensible
// defaults for an n8n container with its data dir mounted at dataDir.
func NewConfig(hostID, baseDir, dataDir string) *Config {
	return &Config{
		HostID:  hostID,
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Service: ServiceConfig{
			ContainerName:  "n8n",
			HealthURL:      "http://localhost:5678/healthz",
			ProbeTimeoutMS: 5000,
			DataFile:       filepath.Join(dataDir, "database.sqlite"),
			CacheDir:       filepath.Join(dataDir, "cache"),
		},
		Snapshots: SnapshotsConfig{
			RetentionDays: 30,
		},
		Catalog: CatalogConfig{
			Type: "sqlite",
		},
		Encryption: EncryptionConfig{
			RecipientPath: filepath.Join(baseDir, "keys", "lifeboat.pub"),
			IdentityPath:  filepath.Join(baseDir, "keys", "lifeboat.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path.
// An existing config is never overwritten.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
