package knx

import "errors"

// Domain errors for the knx package.
var (
	// ErrInvalidAddressStyle is returned when an addressing style name is
	// not one of Free, TwoLevel or ThreeLevel.
	ErrInvalidAddressStyle = errors.New("knx: invalid group address style")

	// ErrInvalidDPT is returned when a datapoint label cannot be parsed.
	ErrInvalidDPT = errors.New("knx: invalid datapoint type")

	// ErrMissingDPT is returned when a group address has no datapoint label.
	ErrMissingDPT = errors.New("knx: missing datapoint type")
)
