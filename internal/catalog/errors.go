package catalog

import "errors"

var (
	// ErrNotFound is returned when no procedure has the requested name.
	ErrNotFound = errors.New("procedure not found")

	// ErrDuplicate is returned when a qualified name is already registered.
	ErrDuplicate = errors.New("procedure already registered")

	// ErrNotAllowed is returned when a name matches no allow pattern.
	ErrNotAllowed = errors.New("procedure not allowed")
)
