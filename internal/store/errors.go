package store

import "fmt"

// PersistenceError wraps a failed snapshot write. Write-through failures are
// logged and swallowed so mutations still succeed in memory; callers only
// see this from an explicit Flush.
type PersistenceError struct {
	Cause error
}

func (e *PersistenceError) Error() string {
	return "snapshot write failed: " + e.Cause.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// CorruptSnapshotError reports a snapshot that could not be read or parsed
// and was moved aside for inspection. The store starts empty in that case;
// the error exists for logging, never to fail startup.
type CorruptSnapshotError struct {
	QuarantinePath string
	Cause          error
}

func (e *CorruptSnapshotError) Error() string {
	return fmt.Sprintf("corrupt snapshot quarantined at %s: %v", e.QuarantinePath, e.Cause)
}

func (e *CorruptSnapshotError) Unwrap() error { return e.Cause }
