package life

import "time"

// OperationRecord is one row of the operations journal: a single CLI
// invocation that mutated the data directory.
type OperationRecord struct {
	ID         int64
	Operation  string
	Target     string
	Status     string // "running", "success" or "error"
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Catalog is the journal of mutating operations (save, restore, clean).
// It is an audit trail only; the snapshot store on disk remains the source
// of truth for what exists.
type Catalog interface {
	// Begin inserts a new running operation and returns its ID.
	Begin(operation, target string, startedAt time.Time) (int64, error)

	// Finish marks an operation finished with the given status.
	Finish(id int64, status string, finishedAt time.Time) error

	// Recent returns the most recent operations, newest first.
	Recent(limit int) ([]*OperationRecord, error)

	// Close closes the underlying store.
	Close() error
}
