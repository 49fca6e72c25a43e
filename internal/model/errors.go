package model

import "fmt"

// CorruptionError reports a checksum mismatch on an immutable field. It is
// never auto-repaired: the affected object is excluded from merging until a
// human resolves it.
type CorruptionError struct {
	ID       ID
	Field    string
	Stored   string
	Computed string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("%s: %s checksum mismatch (stored %.12s, computed %.12s)",
		e.ID, e.Field, e.Stored, e.Computed)
}

// CycleError reports a parent assignment that would make an object its own
// ancestor.
type CycleError struct {
	ID     ID
	Parent ID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: parent %s would create a cycle", e.ID, e.Parent)
}
