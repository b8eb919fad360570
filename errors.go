package relhost

import "errors"

// Sentinel errors surfaced by the registration and mutation paths. Host
// failures from getters, setters, and cache builders are wrapped around
// these with fmt.Errorf("%w") so callers can still errors.Is against them.
var (
	// ErrIdentifierInvalid is returned by CreateVTable when a table or
	// module name fails the [A-Za-z0-9_]+ identifier check.
	ErrIdentifierInvalid = errors.New("relhost: invalid identifier")

	// ErrReadOnly is returned from Insert/Update/Delete on adapter flavors
	// or columns that do not support the requested mutation.
	ErrReadOnly = errors.New("relhost: read-only")

	// ErrHostFailure wraps a setter, delete handler, insert handler, or
	// cache builder reporting failure.
	ErrHostFailure = errors.New("relhost: host callback failed")

	// ErrColumnOutOfRange is returned by a cursor's Column for an index
	// outside the table's declared column list.
	ErrColumnOutOfRange = errors.New("relhost: column index out of range")
)
