package world

import "errors"

var (
	// ErrOutOfBounds is returned for coordinates outside the configured world
	// extent. Coordinates are never clamped.
	ErrOutOfBounds = errors.New("coordinates out of world bounds")

	// ErrNotFound is the normal outcome of a lookup that matched nothing.
	ErrNotFound = errors.New("object not found")

	ErrInvalidConfig = errors.New("invalid grid config")
)
