package life

// StoreStats summarizes the snapshot store.
type StoreStats struct {
	SnapshotCount int
	TotalBytes    int64
	CurrentID     string
	OldestID      string
	NewestID      string
}

// Stats returns counts and total storage size of the snapshot store.
func (s *Service) Stats() (*StoreStats, error) {
	snaps, err := s.List()
	if err != nil {
		return nil, err
	}

	st := &StoreStats{SnapshotCount: len(snaps)}
	for _, snap := range snaps {
		st.TotalBytes += snap.SizeBytes
	}
	if len(snaps) > 0 {
		st.OldestID = snaps[0].ID
		st.NewestID = snaps[len(snaps)-1].ID
	}

	cur, err := s.current.Get()
	if err != nil {
		return nil, err
	}
	st.CurrentID = cur
	return st, nil
}
