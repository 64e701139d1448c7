package life

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"
)

// SnapshotIDFormat is the time layout snapshot IDs are derived from.
// Second resolution keeps IDs short and lexicographically sortable in
// creation order; two saves within the same second collide and the second
// one is rejected with ErrSnapshotExists.
const SnapshotIDFormat = "20060102-150405"

// Snapshot describes one immutable, timestamped copy of the service's
// persistent state. A snapshot may be partially populated: the data file or
// the cache directory can be absent when the live counterpart was missing at
// save time, or when a later copy step failed.
type Snapshot struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	ServiceVersion string    `json:"service_version,omitempty"`
	ContainerID    string    `json:"container_id,omitempty"`
	Uptime         string    `json:"uptime,omitempty"`
	HasData        bool      `json:"has_data"`
	HasCache       bool      `json:"has_cache"`
	SizeBytes      int64     `json:"-"`
}

// Service coordinates snapshot save/restore, retention sweeps and store
// statistics for a single managed service instance. It assumes at most one
// invocation runs against a given data directory at a time; the caller is
// responsible for holding the advisory lock around mutating operations.
type Service struct {
	store   Store
	probe   Probe
	current Pointer
	replica Replica // optional, may be nil
	sealer  Sealer  // optional, may be nil
	layout  Layout
	logger  Logger
	clock   Clock
}

// NewService creates a Service with the provided dependencies.
// replica and sealer may be nil when no off-machine copy is configured.
func NewService(store Store, probe Probe, current Pointer, replica Replica, sealer Sealer, layout Layout, logger Logger, clock Clock) *Service {
	return &Service{
		store:   store,
		probe:   probe,
		current: current,
		replica: replica,
		sealer:  sealer,
		layout:  layout,
		logger:  logger,
		clock:   clock,
	}
}

// Layout returns the on-disk layout the service operates on.
func (s *Service) Layout() Layout { return s.layout }

// Save creates a new snapshot of the live data file and cache directory,
// then repoints the current-snapshot pointer at it.
//
// The service container must be running; its metadata (version, container
// ID, uptime) is recorded with the snapshot. On partial failure (data copy
// succeeded, cache copy failed) the snapshot directory is left behind in a
// partially populated but still-listed state; there is no rollback.
func (s *Service) Save(ctx context.Context) (*Snapshot, error) {
	running, info := s.probe.IsRunning(ctx)
	if !running {
		return nil, ErrNoActiveService
	}

	now := s.clock.Now().UTC()
	id := now.Format(SnapshotIDFormat)
	dir := s.layout.SnapshotDir(id)
	if s.store.Exists(dir) {
		return nil, fmt.Errorf("%s: %w", id, ErrSnapshotExists)
	}

	if err := s.store.MkdirAll(dir); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	snap := &Snapshot{
		ID:             id,
		CreatedAt:      now,
		ServiceVersion: info.Version,
		ContainerID:    info.ContainerID,
		Uptime:         info.Uptime,
	}

	if s.store.Exists(s.layout.DataFile) {
		if err := s.store.CopyFile(s.layout.DataFile, s.layout.SnapshotData(id)); err != nil {
			return nil, fmt.Errorf("copying data file: %w", err)
		}
		snap.HasData = true
	} else {
		s.logger.Warn("live data file missing, snapshot has no data store", "path", s.layout.DataFile)
	}

	if s.store.Exists(s.layout.CacheDir) {
		if err := s.store.CopyTree(s.layout.CacheDir, s.layout.SnapshotCache(id)); err != nil {
			return nil, fmt.Errorf("copying cache directory: %w", err)
		}
		snap.HasCache = true
	}

	if err := s.writeMetadata(snap); err != nil {
		return nil, err
	}

	if err := s.current.Set(id); err != nil {
		return nil, fmt.Errorf("updating current pointer: %w", err)
	}

	snap.SizeBytes, _ = s.store.TreeSize(dir)
	s.logger.Info("snapshot saved", "id", id, "bytes", snap.SizeBytes)

	if s.replica != nil && snap.HasData {
		if err := s.pushReplica(ctx, id); err != nil {
			return snap, fmt.Errorf("pushing snapshot to replica: %w", err)
		}
		s.logger.Info("snapshot pushed to replica", "id", id)
	}

	return snap, nil
}

// List returns all snapshots ordered by creation time ascending.
// Snapshot IDs sort lexicographically in creation order, so directory order
// is creation order.
func (s *Service) List() ([]*Snapshot, error) {
	dirs, err := s.store.ListMatching(s.layout.SnapshotsDir, "*")
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}

	snaps := make([]*Snapshot, 0, len(dirs))
	for _, d := range dirs {
		snaps = append(snaps, s.loadSnapshot(filepath.Base(d)))
	}
	return snaps, nil
}

// Current returns the ID the current-snapshot pointer refers to, or ""
// when it is unset.
func (s *Service) Current() (string, error) {
	return s.current.Get()
}

// loadSnapshot reads a snapshot's metadata record and reconciles it with
// what is actually on disk. A missing or corrupt metadata record does not
// hide the snapshot: the ID encodes enough to synthesize a creation time.
func (s *Service) loadSnapshot(id string) *Snapshot {
	snap := &Snapshot{ID: id}

	if data, err := s.store.Read(s.layout.SnapshotMeta(id)); err == nil {
		if err := json.Unmarshal(data, snap); err != nil {
			s.logger.Warn("unreadable snapshot metadata", "id", id, "error", err)
		}
		snap.ID = id
	}
	if snap.CreatedAt.IsZero() {
		if t, err := time.Parse(SnapshotIDFormat, id); err == nil {
			snap.CreatedAt = t.UTC()
		}
	}

	// The store is the source of truth for what actually survived.
	snap.HasData = s.store.Exists(s.layout.SnapshotData(id))
	snap.HasCache = s.store.Exists(s.layout.SnapshotCache(id))
	snap.SizeBytes, _ = s.store.TreeSize(s.layout.SnapshotDir(id))
	return snap
}

func (s *Service) writeMetadata(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot metadata: %w", err)
	}
	if err := s.store.Write(s.layout.SnapshotMeta(snap.ID), append(data, '\n')); err != nil {
		return fmt.Errorf("writing snapshot metadata: %w", err)
	}
	return nil
}

// pushReplica uploads a snapshot's data file to the configured replica,
// sealing it first when encryption keys are in place.
func (s *Service) pushReplica(ctx context.Context, id string) error {
	dataPath := s.layout.SnapshotData(id)
	f, err := s.store.Open(dataPath)
	if err != nil {
		return fmt.Errorf("opening snapshot data: %w", err)
	}
	defer f.Close()

	if s.sealer != nil && s.sealer.Configured() {
		// Ciphertext size is unknown up front; stream through a pipe.
		pr, pw := io.Pipe()
		sealErrCh := make(chan error, 1)
		go func() {
			err := s.sealer.Encrypt(f, pw)
			pw.CloseWithError(err)
			sealErrCh <- err
		}()

		putErr := s.replica.Put(ctx, id, pr, -1)
		pr.CloseWithError(putErr) // unblock goroutine if Put failed early
		sealErr := <-sealErrCh

		if putErr != nil {
			return putErr
		}
		return sealErr
	}

	size, err := s.store.TreeSize(dataPath)
	if err != nil {
		return fmt.Errorf("sizing snapshot data: %w", err)
	}
	return s.replica.Put(ctx, id, f, size)
}

// Pull retrieves a snapshot's data file from the replica into the local
// snapshot store, unsealing it when encryption keys are configured. It is
// the recovery path after local snapshot loss. Returns the local path the
// data file was written to.
func (s *Service) Pull(ctx context.Context, id string) (string, error) {
	if s.replica == nil {
		return "", fmt.Errorf("no replica configured")
	}

	// The fetch, the optional unseal and the local write run as a pipe
	// chain so the data file never sits in memory whole.
	fetchR, fetchW := io.Pipe()
	getErrCh := make(chan error, 1)
	go func() {
		err := s.replica.Get(ctx, id, fetchW)
		fetchW.CloseWithError(err)
		getErrCh <- err
	}()

	dataR := fetchR
	sealed := s.sealer != nil && s.sealer.Configured()
	var sealErrCh chan error
	if sealed {
		plainR, plainW := io.Pipe()
		sealErrCh = make(chan error, 1)
		go func() {
			err := s.sealer.Decrypt(fetchR, plainW)
			plainW.CloseWithError(err)
			fetchR.CloseWithError(err) // unblock the fetch if unsealing failed early
			sealErrCh <- err
		}()
		dataR = plainR
	}

	target := s.layout.SnapshotData(id)
	writeErr := s.store.WriteFrom(target, dataR)
	dataR.CloseWithError(writeErr) // unblock upstream if the write failed early

	var sealErr error
	if sealed {
		sealErr = <-sealErrCh
	}
	getErr := <-getErrCh

	if getErr != nil {
		return "", fmt.Errorf("fetching snapshot from replica: %w", getErr)
	}
	if sealErr != nil {
		return "", fmt.Errorf("unsealing snapshot: %w", sealErr)
	}
	if writeErr != nil {
		return "", fmt.Errorf("writing snapshot data: %w", writeErr)
	}

	// Synthesize a metadata record if the snapshot was lost entirely.
	if !s.store.Exists(s.layout.SnapshotMeta(id)) {
		snap := &Snapshot{ID: id, HasData: true}
		if t, err := time.Parse(SnapshotIDFormat, id); err == nil {
			snap.CreatedAt = t.UTC()
		}
		if err := s.writeMetadata(snap); err != nil {
			return "", err
		}
	}

	s.logger.Info("snapshot pulled from replica", "id", id)
	return target, nil
}
