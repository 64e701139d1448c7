// Package pointer implements life.Pointer as a single well-known file
// holding one value. The write is temp-file + rename, so readers never see
// a torn value.
package pointer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lifeboat/internal/life"
)

// FilePointer stores a single value in a file.
type FilePointer struct {
	path string
}

// NewFilePointer creates a pointer backed by the given file path.
func NewFilePointer(path string) *FilePointer {
	return &FilePointer{path: path}
}

// Get returns the stored value, or "" when the file does not exist.
func (p *FilePointer) Get() (string, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading pointer %s: %w", p.path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Set atomically overwrites the stored value.
func (p *FilePointer) Set(value string) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating pointer directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(value + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing pointer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, p.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming pointer: %w", err)
	}
	return nil
}

// Clear removes the pointer file. Clearing an unset pointer is a no-op.
func (p *FilePointer) Clear() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing pointer %s: %w", p.path, err)
	}
	return nil
}

// Compile-time check that FilePointer implements life.Pointer
var _ life.Pointer = (*FilePointer)(nil)
