package ir

// Version constants for the runtime and its catalog format.
const (
	// CatalogVersion is the version of the persisted signature catalog format.
	CatalogVersion = "1"

	// RuntimeVersion is the procrt runtime version.
	RuntimeVersion = "0.1.0"
)
