package life

import "errors"

// Sentinel errors for the lifecycle core. Callers classify failures with
// errors.Is; the CLI maps each one to a single diagnostic line and a
// non-zero exit status.
var (
	// ErrNotFound reports a missing profile, pointer target, or file.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists reports a name collision on create.
	ErrAlreadyExists = errors.New("already exists")

	// ErrSnapshotExists reports a snapshot ID collision. IDs have second
	// resolution, so two saves within the same second collide; the
	// collision is rejected rather than disambiguated.
	ErrSnapshotExists = errors.New("snapshot already exists")

	// ErrSnapshotNotFound reports a restore target absent from the store.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrNoCurrentSnapshot reports a restore with no argument when no
	// snapshot has ever been saved.
	ErrNoCurrentSnapshot = errors.New("no current snapshot")

	// ErrNoActiveService reports a save attempted while the managed
	// service container is not running.
	ErrNoActiveService = errors.New("service is not running")

	// ErrServiceRunning reports a restore attempted while the service is
	// running and the caller did not force it.
	ErrServiceRunning = errors.New("service is running")

	// ErrLocked reports that another invocation holds the data directory
	// lock.
	ErrLocked = errors.New("data directory is locked")
)
