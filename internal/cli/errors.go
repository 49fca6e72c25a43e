package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Workspace errors
	ErrWorkspaceNotFound = "WORKSPACE_NOT_FOUND"
	ErrConfigInvalid     = "CONFIG_INVALID"

	// Object errors
	ErrObjectNotFound = "OBJECT_NOT_FOUND"
	ErrIDInvalid      = "ID_INVALID"
	ErrStateInvalid   = "STATE_INVALID"

	// Sync errors
	ErrSyncFailed     = "SYNC_FAILED"
	ErrCommitConflict = "COMMIT_CONFLICT"
	ErrCorruption     = "LEDGER_CORRUPTION"

	// Database errors
	ErrDatabaseError = "DATABASE_ERROR"

	// File errors
	ErrFileWriteError = "FILE_WRITE_ERROR"
)
