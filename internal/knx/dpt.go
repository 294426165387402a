package knx

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/vapourismo/knx-go/knx/dpt"
)

// DPT represents a normalised KNX Datapoint Type identifier.
//
// Format: "major.minor" (e.g., "1.001", "9.001")
type DPT string

// Datapoint types with a known Home Assistant mapping.
const (
	DPTSwitch         DPT = "1.001" // on/off command or state
	DPTUpDown         DPT = "1.008" // up/down
	DPTStart          DPT = "1.010" // start/stop
	DPTState          DPT = "1.011" // switch state
	DPTDimmingControl DPT = "3.007" // relative dimming, used by push buttons
	DPTPercentage     DPT = "5.001" // 0-100%
)

var reDPST = regexp.MustCompile(`^DPST-([0-9]+)-([0-9]+)$`)

// NormaliseDatapoint converts an ETS datapoint subtype label to the
// "main.sub" form with a three digit, zero padded subtype.
//
// DPST-1-1 -> 1.001, DPST-9-23 -> 9.023.
//
// Returns:
//   - DPT: the normalised type
//   - error: ErrMissingDPT for an empty label, ErrInvalidDPT for any other
//     shape (including main-type-only "DPT-1" labels)
func NormaliseDatapoint(label string) (DPT, error) {
	if label == "" {
		return "", ErrMissingDPT
	}
	m := reDPST.FindStringSubmatch(label)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDPT, label)
	}
	main, err := strconv.Atoi(m[1])
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidDPT, label, err)
	}
	sub, err := strconv.Atoi(m[2])
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidDPT, label, err)
	}
	return DPT(fmt.Sprintf("%d.%03d", main, sub)), nil
}

// HasCodec reports whether the knx-go datapoint library can decode values
// of this type.
func (d DPT) HasCodec() bool {
	_, ok := dpt.Produce(string(d))
	return ok
}

// String implements fmt.Stringer.
func (d DPT) String() string {
	return string(d)
}
