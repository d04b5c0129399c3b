package similarity

import "errors"

var (
	// ErrFeatureUnavailable indicates a frame feature could not be loaded
	// for a node being registered. Registration aborts without touching the
	// matrix.
	ErrFeatureUnavailable = errors.New("frame feature unavailable")

	// ErrPersist indicates the matrix could not be written to disk. The
	// in-memory matrix remains authoritative for the process lifetime, but
	// a restart may lose the unsaved mutation.
	ErrPersist = errors.New("persist similarity matrix")

	// ErrThreshold indicates a query threshold outside [0,1].
	ErrThreshold = errors.New("threshold must be between 0 and 1")
)
