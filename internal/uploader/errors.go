package uploader

import (
	"errors"
	"fmt"
)

var (
	// ErrAborted marks a transfer cancelled mid-flight.
	ErrAborted = errors.New("upload was aborted")
	// ErrNoPendingFiles signals an upload call on a batch with nothing to send.
	ErrNoPendingFiles = errors.New("no valid files to upload")
)

// TransportError covers network failures, aborts and non-success HTTP
// statuses during a single file's transfer. Recoverable via explicit retry of
// that file only.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upload failed with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("network error during upload: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
