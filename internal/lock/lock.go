// Package lock provides an advisory file lock around mutating operations.
// Exclusive-create semantics (O_EXCL) make acquisition atomic; the holder's
// pid is written into the file so a stale lock can be diagnosed. This is an
// advisory guard only; nothing stops a process that ignores it.
package lock

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"lifeboat/internal/life"
)

// Lock is a held advisory lock. Release it on all exit paths.
type Lock struct {
	path string
}

// Acquire takes the lock at path, failing with life.ErrLocked when another
// invocation already holds it.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			holder := holderPid(path)
			if holder != "" {
				return nil, fmt.Errorf("held by pid %s at %s: %w", holder, path, life.ErrLocked)
			}
			return nil, fmt.Errorf("%s: %w", path, life.ErrLocked)
		}
		return nil, fmt.Errorf("creating lock file: %w", err)
	}

	_, werr := f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing lock file: %w", werr)
	}

	return &Lock{path: path}, nil
}

// Release removes the lock file.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("releasing lock: %w", err)
	}
	return nil
}

func holderPid(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
