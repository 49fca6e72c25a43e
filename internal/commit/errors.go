package commit

import "fmt"

// ConflictError aborts a commit whose target changed since it was read.
// Nothing was written; the caller re-reads and replans.
type ConflictError struct {
	Document string
	Expected Stamp
	Found    Stamp
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: modified since read, commit aborted", e.Document)
}

// AppendViolationError aborts a commit that would shrink or rewrite an
// append-only document.
type AppendViolationError struct {
	Document string
	OldSize  int
	NewSize  int
}

func (e *AppendViolationError) Error() string {
	return fmt.Sprintf("%s: append-only document would be rewritten (%d bytes -> %d)",
		e.Document, e.OldSize, e.NewSize)
}

// VerificationFailure reports a write whose readback did not match even after
// a retry. The bytes on disk are suspect.
type VerificationFailure struct {
	Document string
	Err      error
}

func (e *VerificationFailure) Error() string {
	return fmt.Sprintf("%s: post-write verification failed: %v", e.Document, e.Err)
}

func (e *VerificationFailure) Unwrap() error { return e.Err }

// PartialCommitError reports a plan that stopped midway. Applied writes are
// durable and verified; the remainder never ran. The integrity log holds the
// per-document trail.
type PartialCommitError struct {
	Applied  int
	Planned  int
	Document string
	Err      error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("commit stopped at %s: %d of %d writes applied: %v",
		e.Document, e.Applied, e.Planned, e.Err)
}

func (e *PartialCommitError) Unwrap() error { return e.Err }
