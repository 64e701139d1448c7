package life

import "fmt"

// SweepKind selects which part of the data directory a retention sweep
// operates on.
type SweepKind string

const (
	SweepSnapshots SweepKind = "snapshots"
	SweepCache     SweepKind = "cache"
	SweepLogs      SweepKind = "logs"
)

// Sweep deletes items of the given kind whose age exceeds retentionDays.
// Age is a pure function of the modification time; items with age equal to
// the threshold are kept. When dryRun is true nothing is deleted and the
// would-be victims are returned. An empty or missing target set yields an
// empty result, never an error.
//
// Sweeping away the snapshot the current pointer refers to clears the
// pointer as well, so a later bare restore reports "no current snapshot"
// instead of chasing a dangling reference.
func (s *Service) Sweep(kind SweepKind, retentionDays int, dryRun bool) ([]string, error) {
	var dir, pattern string
	switch kind {
	case SweepSnapshots:
		dir, pattern = s.layout.SnapshotsDir, "*"
	case SweepCache:
		dir, pattern = s.layout.CacheDir, "*"
	case SweepLogs:
		dir, pattern = s.layout.LogDir, "*"
	default:
		return nil, fmt.Errorf("unknown sweep kind: %q", kind)
	}

	entries, err := s.store.ListMatching(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", kind, err)
	}

	now := s.clock.Now()
	var removed []string
	for _, path := range entries {
		age, err := s.store.AgeInDays(path, now)
		if err != nil {
			return removed, fmt.Errorf("checking age of %s: %w", path, err)
		}
		if age <= float64(retentionDays) {
			continue
		}
		if !dryRun {
			if err := s.store.Remove(path); err != nil {
				return removed, fmt.Errorf("removing %s: %w", path, err)
			}
		}
		removed = append(removed, path)
	}

	if !dryRun && kind == SweepSnapshots && len(removed) > 0 {
		if err := s.clearDanglingCurrent(); err != nil {
			return removed, err
		}
	}

	if !dryRun {
		s.logger.Info("retention sweep complete", "kind", string(kind), "removed", len(removed), "days", retentionDays)
	}
	return removed, nil
}

func (s *Service) clearDanglingCurrent() error {
	cur, err := s.current.Get()
	if err != nil {
		return fmt.Errorf("reading current pointer: %w", err)
	}
	if cur == "" || s.store.Exists(s.layout.SnapshotDir(cur)) {
		return nil
	}
	if err := s.current.Clear(); err != nil {
		return fmt.Errorf("clearing current pointer: %w", err)
	}
	s.logger.Info("current pointer cleared, snapshot swept", "id", cur)
	return nil
}
