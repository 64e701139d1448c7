package life

import (
	"io"
	"time"
)

// Store provides an interface for file storage operations under the data
// directory tree. It abstracts file access so the lifecycle services can be
// exercised against a temp directory in tests.
//
// Store has no transactional guarantee beyond "copy to temp, then atomic
// rename" on single-file writes; multi-file operations (snapshot save,
// restore) sequence individual calls and leave partial state behind on
// failure. Errors are not retried; they propagate to the caller.
type Store interface {
	// Write atomically writes data to path, creating parent directories.
	Write(path string, data []byte) error

	// WriteFrom atomically writes the contents of r to path, creating
	// parent directories. The data streams to a temp file first so a
	// failing reader never leaves a partial file at path.
	WriteFrom(path string, r io.Reader) error

	// Read returns the full contents of path.
	// Missing files report ErrNotFound.
	Read(path string) ([]byte, error)

	// Open opens path for streaming reads.
	// Missing files report ErrNotFound.
	Open(path string) (io.ReadCloser, error)

	// CopyFile copies a single regular file from src to dst, replacing
	// dst atomically. Missing src reports ErrNotFound.
	CopyFile(src, dst string) error

	// CopyTree recursively copies the directory tree at src to dst.
	// Regular files only; irregular entries are skipped.
	CopyTree(src, dst string) error

	// ListMatching returns entries of dir whose base name matches the
	// glob pattern, in lexicographic order. A missing dir yields an
	// empty result, not an error.
	ListMatching(dir, pattern string) ([]string, error)

	// AgeInDays returns the age of path relative to now, derived from
	// its modification time.
	AgeInDays(path string, now time.Time) (float64, error)

	// TreeSize returns the total size in bytes of the file or directory
	// tree at path. A missing path yields 0.
	TreeSize(path string) (int64, error)

	// Exists reports whether path exists.
	Exists(path string) bool

	// Remove deletes the file or directory tree at path.
	// Removing a missing path is a no-op.
	Remove(path string) error

	// MkdirAll creates the directory at path along with any parents.
	MkdirAll(path string) error
}
