// Package replica implements off-machine copies of snapshot data files.
// The filesystem and memory backends serve local mirrors and tests; the s3
// backend serves real offsite storage.
package replica

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lifeboat/internal/life"
)

// FileSystemReplica stores snapshot data files in a directory:
//
//	<root>/
//	  snapshots/
//	    <snapshotID>.db
type FileSystemReplica struct {
	name string
	root string
	dir  string
}

// NewFileSystemReplica creates a replica rooted at the given path.
func NewFileSystemReplica(name, root string) (*FileSystemReplica, error) {
	dir := filepath.Join(root, "snapshots")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating replica directory: %w", err)
	}
	return &FileSystemReplica{name: name, root: root, dir: dir}, nil
}

// Put stores the data file for a snapshot, atomically via temp + rename.
// When size is non-negative, the byte count is verified.
func (r *FileSystemReplica) Put(_ context.Context, snapshotID string, src io.Reader, size int64) error {
	destPath := filepath.Join(r.dir, snapshotID+".db")

	tmp, err := os.CreateTemp(r.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, src)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("writing data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if size >= 0 && written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	success = true
	return nil
}

// Get retrieves a snapshot's data file and writes it to w.
func (r *FileSystemReplica) Get(_ context.Context, snapshotID string, w io.Writer) error {
	f, err := os.Open(filepath.Join(r.dir, snapshotID+".db"))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("replica snapshot %s: %w", snapshotID, life.ErrNotFound)
		}
		return fmt.Errorf("opening replica file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading replica file: %w", err)
	}
	return nil
}

// List returns the snapshot IDs present in the replica.
func (r *FileSystemReplica) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("reading replica directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".db"))
	}
	return ids, nil
}

// Validate verifies that the replica directory is accessible.
func (r *FileSystemReplica) Validate(_ context.Context) error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return fmt.Errorf("replica not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("replica path is not a directory: %s", r.dir)
	}
	return nil
}

// Compile-time check that FileSystemReplica implements life.Replica
var _ life.Replica = (*FileSystemReplica)(nil)
