package replica

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"lifeboat/internal/life"
)

// MemoryReplica is an in-memory implementation of life.Replica, useful for
// tests. Safe for concurrent use.
type MemoryReplica struct {
	name string
	mu   sync.RWMutex
	data map[string][]byte // snapshotID -> data file bytes
}

// NewMemoryReplica creates a new in-memory replica with the given name.
func NewMemoryReplica(name string) *MemoryReplica {
	return &MemoryReplica{name: name, data: make(map[string][]byte)}
}

// Put stores the data file for a snapshot.
func (r *MemoryReplica) Put(_ context.Context, snapshotID string, src io.Reader, size int64) error {
	var buf bytes.Buffer
	written, err := io.Copy(&buf, src)
	if err != nil {
		return fmt.Errorf("reading data: %w", err)
	}
	if size >= 0 && written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[snapshotID] = buf.Bytes()
	return nil
}

// Get retrieves a snapshot's data file and writes it to w.
func (r *MemoryReplica) Get(_ context.Context, snapshotID string, w io.Writer) error {
	r.mu.RLock()
	data, ok := r.data[snapshotID]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("replica snapshot %s: %w", snapshotID, life.ErrNotFound)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing data: %w", err)
	}
	return nil
}

// List returns the stored snapshot IDs in lexicographic order.
func (r *MemoryReplica) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.data))
	for id := range r.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Validate always succeeds for the in-memory replica.
func (r *MemoryReplica) Validate(_ context.Context) error { return nil }

// Compile-time check that MemoryReplica implements life.Replica
var _ life.Replica = (*MemoryReplica)(nil)
