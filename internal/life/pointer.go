package life

// Pointer is a single-value store for a mutable reference, used for the
// current-snapshot and active-profile pointers. Implementations must make
// Set atomic; at most one value exists at a time.
type Pointer interface {
	// Get returns the stored value, or "" when the pointer is unset.
	Get() (string, error)

	// Set overwrites the stored value.
	Set(value string) error

	// Clear unsets the pointer. Clearing an unset pointer is a no-op.
	Clear() error
}
