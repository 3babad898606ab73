package archive

import "errors"

// Archive-specific errors
var (
	// ErrDirectoryNotFound is returned when a remote listing has no entry
	// matching a required pattern. It is never an empty success: callers can
	// rely on a non-empty result whenever the error is nil.
	ErrDirectoryNotFound = errors.New("remote directory listing has no matching entries")

	// ErrBadStatus is returned when the archive answers with a non-2xx
	// status. Redirects are not followed, so a 3xx lands here too instead of
	// being written to disk as file content.
	ErrBadStatus = errors.New("unexpected HTTP status from archive")
)
