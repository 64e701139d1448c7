package app

// Operation tracks a CLI invocation that may mutate the data directory.
// Operations are created in memory with ID=0. Only mutating commands
// journal them in the catalog (giving them an auto-increment ID).
type Operation struct {
	ID     int64
	Name   string
	Target string
	Status string // "success" or "error"
}

// NewOperation creates a new in-memory operation record.
func NewOperation(name, target string) *Operation {
	return &Operation{
		Name:   name,
		Target: target,
		Status: "success",
	}
}

// Journaled returns true if this operation has been recorded in the catalog.
func (op *Operation) Journaled() bool {
	return op.ID != 0
}
