package ports

import "time"

// RequestStore tracks issued authentication-request ids so responses can be
// matched to them (InResponseTo) and each id accepted at most once.
// Implementations must be safe for concurrent use.
type RequestStore interface {
	// Store saves a request id with its expiry time.
	Store(requestID string, expiry time.Time) error

	// Valid checks if a request id exists and is not expired.
	// Returns true only once per id (single-use).
	Valid(requestID string) bool

	// GetAll returns all non-expired request ids.
	GetAll() []string
}
