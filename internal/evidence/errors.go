package evidence

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFiles signals a batch request that carried no file parts.
	ErrNoFiles = errors.New("no files provided")
	// ErrEvidenceNotFound signals that no evidence rows match the query.
	ErrEvidenceNotFound = errors.New("evidence not found")
)

// ValidationError rejects a candidate file before any storage work happens.
// It is always recoverable locally and never aborts sibling files.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// StoreError wraps a failed object or metadata store operation so callers can
// tell it apart from a validation rejection.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
