package store

import "errors"

var (
	// ErrStaleMarker indicates a commit or cancel against a marker that
	// claims no rows. That can only happen through a scheduler bug (double
	// resolution, or resolving a foreign marker) and must never pass
	// silently.
	ErrStaleMarker = errors.New("outbox claim marker is unknown or already resolved")

	// ErrConnectionNotFound indicates no connection record exists for the
	// requested identity.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrInvalidConnection indicates a connection record that cannot be
	// stored (for example, an empty identity).
	ErrInvalidConnection = errors.New("invalid connection record")
)
