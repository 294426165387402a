package generate

import "errors"

// Domain errors for the generate package.
var (
	// ErrUnknownFormat is returned when no generator is registered under
	// the requested format name.
	ErrUnknownFormat = errors.New("generate: unknown output format")
)
