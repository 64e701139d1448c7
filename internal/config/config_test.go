package config

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()
	cfg := NewConfig("host-1", "/base", "/data/.n8n")

	if cfg.Service.ContainerName != "n8n" {
		t.Errorf("ContainerName = %q, want n8n", cfg.Service.ContainerName)
	}
	if cfg.Service.DataFile != filepath.Join("/data/.n8n", "database.sqlite") {
		t.Errorf("DataFile = %q, want it under the data dir", cfg.Service.DataFile)
	}
	if cfg.Snapshots.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", cfg.Snapshots.RetentionDays)
	}
	if cfg.Catalog.Type != "sqlite" {
		t.Errorf("Catalog.Type = %q, want sqlite", cfg.Catalog.Type)
	}
	if cfg.Replica.Type != "" {
		t.Errorf("Replica.Type = %q, want disabled by default", cfg.Replica.Type)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()
	cfg := NewConfig("host-1", "/base", "/data/.n8n")
	cfg.Replica = ReplicaConfig{
		Type:     "s3",
		Name:     "offsite",
		S3Bucket: "backups",
		S3Prefix: "n8n",
		S3Region: "eu-central-1",
	}
	cfg.Encryption.Type = "age"

	m := &Manager{}
	var buf bytes.Buffer
	if err := m.Write(&buf, cfg); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("round-trip mismatch:\ngot  %+v\nwant %+v", got, cfg)
	}
}

func TestReadPartialConfig(t *testing.T) {
	t.Parallel()
	raw := `
host_id = "abc"
base_dir = "/base"

[service]
container_name = "n8n-prod"
health_url = "http://localhost:5678/healthz"
`
	m := &Manager{}
	cfg, err := m.Read(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if cfg.Service.ContainerName != "n8n-prod" {
		t.Errorf("ContainerName = %q, want n8n-prod", cfg.Service.ContainerName)
	}
	if cfg.Snapshots.RetentionDays != 0 {
		t.Errorf("RetentionDays = %d, want zero for an omitted section", cfg.Snapshots.RetentionDays)
	}
}

func TestReadMalformed(t *testing.T) {
	t.Parallel()
	m := &Manager{}
	if _, err := m.Read(strings.NewReader("host_id = [broken")); err == nil {
		t.Fatal("Read(malformed) succeeded, want error")
	}
}

func TestInit(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "conf", "lifeboat.toml")
	cfg := NewConfig("host-1", "/base", "/data/.n8n")

	if err := Init(path, cfg); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	got, err := ReadFromFile(path)
	if err != nil {
		t.Fatalf("ReadFromFile() error: %v", err)
	}
	if got.HostID != "host-1" {
		t.Errorf("HostID = %q, want host-1", got.HostID)
	}

	if err := Init(path, cfg); err == nil {
		t.Fatal("second Init() succeeded, want refusal to overwrite")
	}
}

func TestReadFromMissingFile(t *testing.T) {
	t.Parallel()
	if _, err := ReadFromFile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("ReadFromFile(absent) succeeded, want error")
	}
}
