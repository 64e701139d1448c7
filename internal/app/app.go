package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"lifeboat/internal/catalog"
	"lifeboat/internal/config"
	"lifeboat/internal/encryption"
	"lifeboat/internal/life"
	"lifeboat/internal/lock"
	"lifeboat/internal/pointer"
	"lifeboat/internal/probe"
	"lifeboat/internal/replica"
	"lifeboat/internal/store"
)

// Well-known file names under the base directory.
const (
	currentPointerFile = "current"
	activePointerFile  = "active-profile"
	lockFile           = ".lock"
)

// App is the application layer between the CLI and the lifecycle services.
// It constructs all dependencies from config, exposes high-level operations,
// journals mutating commands in the catalog, and manages resource lifecycle
// on Close.
type App struct {
	cfg      *config.Config
	layout   life.Layout
	catalog  life.Catalog
	probe    life.Probe
	service  *life.Service
	profiles *life.Profiles
	op       *Operation
	lockPath string
	logFile  *os.File
	logger   life.Logger
}

// New creates a fully wired App from the given config. operation identifies
// the CLI command being run (e.g. "Save", "Restore"). The caller must call
// Close when done.
func New(cfg *config.Config, operation string) (*App, error) {
	applyEnvOverrides(cfg)
	layout := layoutFromConfig(cfg)

	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	st := store.NewOSStore()

	pr, err := probe.NewDockerProbe(cfg.Service.DockerHost, cfg.Service.ContainerName, logger)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating docker probe: %w", err)
	}

	cat, err := catalog.NewCatalogFromConfig(cfg.Catalog, cfg.BaseDir)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating catalog: %w", err)
	}

	rep, err := replica.NewReplicaFromConfig(context.Background(), cfg.Replica)
	if err != nil {
		cat.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating replica: %w", err)
	}

	sealer, err := encryption.NewSealerFromConfig(cfg.Encryption)
	if err != nil {
		cat.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating sealer: %w", err)
	}

	current := pointer.NewFilePointer(filepath.Join(cfg.BaseDir, currentPointerFile))
	active := pointer.NewFilePointer(filepath.Join(cfg.BaseDir, activePointerFile))

	svc := life.NewService(st, pr, current, rep, sealer, layout, logger, life.RealClock{})
	profiles := life.NewProfiles(st, active, layout.ProfilesDir, logger)

	return &App{
		cfg:      cfg,
		layout:   layout,
		catalog:  cat,
		probe:    pr,
		service:  svc,
		profiles: profiles,
		op:       NewOperation(operation, ""),
		lockPath: filepath.Join(cfg.BaseDir, lockFile),
		logFile:  logFile,
		logger:   logger,
	}, nil
}

// applyEnvOverrides lets the environment override the base directory, the
// health endpoint and the retention default without editing the config file.
func applyEnvOverrides(cfg *config.Config) {
	if home := os.Getenv("LIFEBOAT_HOME"); home != "" {
		cfg.BaseDir = home
	}
	if url := os.Getenv("LIFEBOAT_HEALTH_URL"); url != "" {
		cfg.Service.HealthURL = url
	}
	if days := os.Getenv("LIFEBOAT_RETENTION_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			cfg.Snapshots.RetentionDays = n
		}
	}
}

func layoutFromConfig(cfg *config.Config) life.Layout {
	snapDir := cfg.Snapshots.Dir
	if snapDir == "" {
		snapDir = filepath.Join(cfg.BaseDir, "snapshots")
	}
	profDir := cfg.Profiles.Dir
	if profDir == "" {
		profDir = filepath.Join(cfg.BaseDir, "profiles")
	}
	return life.Layout{
		DataFile:     cfg.Service.DataFile,
		CacheDir:     cfg.Service.CacheDir,
		SnapshotsDir: snapDir,
		ProfilesDir:  profDir,
		LogDir:       cfg.LogDir,
	}
}

// journalOp records the operation in the catalog, giving it an ID.
// Only mutating commands call this.
func (a *App) journalOp(target string) error {
	if a.op.Journaled() {
		return nil
	}
	a.op.Target = target
	id, err := a.catalog.Begin(a.op.Name, target, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("journaling operation: %w", err)
	}
	a.op.ID = id
	return nil
}

// withLock runs fn while holding the advisory data-directory lock,
// releasing it on all exit paths.
func (a *App) withLock(fn func() error) error {
	if err := os.MkdirAll(a.cfg.BaseDir, 0755); err != nil {
		return fmt.Errorf("creating base directory: %w", err)
	}
	lk, err := lock.Acquire(a.lockPath)
	if err != nil {
		return err
	}
	defer lk.Release()
	return fn()
}

// fail marks the operation errored and passes the error through.
func (a *App) fail(err error) error {
	if err != nil {
		a.op.Status = "error"
	}
	return err
}

// Save creates a snapshot of the live service state under the advisory lock.
func (a *App) Save(ctx context.Context) (*life.Snapshot, error) {
	var snap *life.Snapshot
	err := a.withLock(func() error {
		if err := a.journalOp(""); err != nil {
			return err
		}
		var err error
		snap, err = a.service.Save(ctx)
		return err
	})
	return snap, a.fail(err)
}

// Restore restores the named (or current) snapshot under the advisory lock.
func (a *App) Restore(ctx context.Context, id string, force bool) (*life.RestoreResult, error) {
	var res *life.RestoreResult
	err := a.withLock(func() error {
		if err := a.journalOp(id); err != nil {
			return err
		}
		var err error
		res, err = a.service.Restore(ctx, id, force)
		return err
	})
	return res, a.fail(err)
}

// List returns all snapshots ordered by creation time.
func (a *App) List() ([]*life.Snapshot, error) {
	return a.service.List()
}

// Current returns the current-snapshot pointer value.
func (a *App) Current() (string, error) {
	return a.service.Current()
}

// Stats returns snapshot store statistics.
func (a *App) Stats() (*life.StoreStats, error) {
	return a.service.Stats()
}

// Sweep applies the retention policy to the given target kind.
// Dry runs are not journaled.
func (a *App) Sweep(kind life.SweepKind, days int, dryRun bool) ([]string, error) {
	if dryRun {
		return a.service.Sweep(kind, days, true)
	}
	var removed []string
	err := a.withLock(func() error {
		if err := a.journalOp(string(kind)); err != nil {
			return err
		}
		var err error
		removed, err = a.service.Sweep(kind, days, false)
		return err
	})
	return removed, a.fail(err)
}

// Pull fetches a snapshot's data file from the replica into the local store.
func (a *App) Pull(ctx context.Context, id string) (string, error) {
	var path string
	err := a.withLock(func() error {
		if err := a.journalOp(id); err != nil {
			return err
		}
		var err error
		path, err = a.service.Pull(ctx, id)
		return err
	})
	return path, a.fail(err)
}

// History returns the most recent journaled operations.
func (a *App) History(limit int) ([]*life.OperationRecord, error) {
	return a.catalog.Recent(limit)
}

// ServiceStatus reports whether the container is running and whether the
// health endpoint answers.
func (a *App) ServiceStatus(ctx context.Context) (bool, life.ServiceInfo, bool) {
	running, info := a.probe.IsRunning(ctx)
	healthy := false
	if running {
		healthy = a.probe.IsHealthy(ctx, a.cfg.Service.HealthURL, a.ProbeTimeout())
	}
	return running, info, healthy
}

// IsServiceRunning reports whether the managed container is up.
func (a *App) IsServiceRunning(ctx context.Context) bool {
	running, _ := a.probe.IsRunning(ctx)
	return running
}

// CreateProfile creates a profile from a template.
func (a *App) CreateProfile(name, template string) (*life.Profile, error) {
	return a.profiles.Create(name, template)
}

// SwitchProfile makes the named profile active.
func (a *App) SwitchProfile(name string) error {
	return a.profiles.Switch(name)
}

// ActiveProfile returns the currently active profile.
func (a *App) ActiveProfile() (*life.Profile, error) {
	return a.profiles.Active()
}

// ListProfiles returns all profile names.
func (a *App) ListProfiles() ([]string, error) {
	return a.profiles.List()
}

// RemoveProfile deletes a non-active profile.
func (a *App) RemoveProfile(name string) error {
	return a.profiles.Remove(name)
}

// ValidateConfigFile validates an arbitrary key=value file.
func (a *App) ValidateConfigFile(path string) ([]life.Violation, error) {
	return a.profiles.ValidateFile(path)
}

// DiffProfiles returns the positional line differences of two profiles.
func (a *App) DiffProfiles(nameA, nameB string) ([]life.DiffLine, error) {
	return a.profiles.Diff(nameA, nameB)
}

// RetentionDays returns the configured retention default.
func (a *App) RetentionDays() int {
	return a.cfg.Snapshots.RetentionDays
}

// ProbeTimeout returns the configured health probe timeout.
func (a *App) ProbeTimeout() time.Duration {
	return time.Duration(a.cfg.Service.ProbeTimeoutMS) * time.Millisecond
}

// Close finalizes the journaled operation (if any) and closes all
// resources.
func (a *App) Close() error {
	var firstErr error

	if a.op.Journaled() {
		if err := a.catalog.Finish(a.op.ID, a.op.Status, time.Now().UTC()); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}
	}

	if err := a.catalog.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing catalog: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
