package life

import (
	"context"
	"fmt"
)

// RestoreResult reports what a restore actually touched.
type RestoreResult struct {
	ID            string
	RestoredData  bool
	RestoredCache bool
	PreRestore    string // path of the safety copy, "" if none was taken
}

// Restore overwrites the live state with the contents of a snapshot.
//
// An empty id targets the current-snapshot pointer. When the service is
// running the caller must pass force=true; the interactive confirmation
// lives in the CLI, not here.
//
// Before the live data file is overwritten it is copied aside to a
// single-slot .pre-restore file. After that safety copy succeeds there is
// no rollback: a failure mid-restore leaves the live state partially
// overwritten and the pre-restore copy is the only recovery path. The live
// cache directory is fully removed and replaced by the snapshot's cache,
// never merged.
func (s *Service) Restore(ctx context.Context, id string, force bool) (*RestoreResult, error) {
	if id == "" {
		cur, err := s.current.Get()
		if err != nil {
			return nil, fmt.Errorf("reading current pointer: %w", err)
		}
		if cur == "" {
			return nil, ErrNoCurrentSnapshot
		}
		id = cur
	}

	if !s.store.Exists(s.layout.SnapshotDir(id)) {
		return nil, fmt.Errorf("%s: %w", id, ErrSnapshotNotFound)
	}

	if running, _ := s.probe.IsRunning(ctx); running && !force {
		return nil, ErrServiceRunning
	}

	res := &RestoreResult{ID: id}

	if s.store.Exists(s.layout.DataFile) {
		pre := s.layout.PreRestoreFile()
		if err := s.store.CopyFile(s.layout.DataFile, pre); err != nil {
			return nil, fmt.Errorf("taking pre-restore copy: %w", err)
		}
		res.PreRestore = pre
		s.logger.Info("pre-restore copy taken", "path", pre)
	}

	if s.store.Exists(s.layout.SnapshotData(id)) {
		if err := s.store.CopyFile(s.layout.SnapshotData(id), s.layout.DataFile); err != nil {
			return res, fmt.Errorf("restoring data file: %w", err)
		}
		res.RestoredData = true
	}

	if s.store.Exists(s.layout.SnapshotCache(id)) {
		if err := s.store.Remove(s.layout.CacheDir); err != nil {
			return res, fmt.Errorf("removing live cache: %w", err)
		}
		if err := s.store.CopyTree(s.layout.SnapshotCache(id), s.layout.CacheDir); err != nil {
			return res, fmt.Errorf("restoring cache: %w", err)
		}
		res.RestoredCache = true
	}

	s.logger.Info("snapshot restored", "id", id, "data", res.RestoredData, "cache", res.RestoredCache)
	return res, nil
}
