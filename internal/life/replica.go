package life

import (
	"context"
	"io"
)

// Replica is an off-machine copy of snapshot data-store files. It is an
// optional collaborator: when configured, save pushes each snapshot's data
// file after the local copy succeeds, and pull retrieves one into the local
// snapshot store.
//
// All operations stream through io.Reader/io.Writer to support large data
// files without loading them into memory.
type Replica interface {
	// Put stores the data file for a snapshot. size is the number of
	// bytes that will be read from r; pass -1 when unknown (e.g. when
	// the stream is encrypted on the fly).
	Put(ctx context.Context, snapshotID string, r io.Reader, size int64) error

	// Get retrieves a snapshot's data file and writes it to w.
	// Missing snapshots report ErrNotFound.
	Get(ctx context.Context, snapshotID string, w io.Writer) error

	// List returns the snapshot IDs present in the replica, in
	// lexicographic order.
	List(ctx context.Context) ([]string, error)

	// Validate verifies that the replica is reachable and writable
	// enough to accept uploads.
	Validate(ctx context.Context) error
}

// Sealer encrypts replica uploads at rest. Snapshot data files carry the
// service's credential store, so off-machine copies can be sealed with an
// age recipient while local snapshots stay in the clear.
type Sealer interface {
	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Decrypt reads ciphertext from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error

	// Configured reports whether key material is in place.
	Configured() bool
}
