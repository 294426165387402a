package knx

import (
	"fmt"
	"strconv"

	"github.com/vapourismo/knx-go/knx/cemi"
)

// AddressStyle selects how a raw group address is rendered.
type AddressStyle int

// Addressing styles as declared in ETS ProjectInformation.
const (
	StyleFree AddressStyle = iota
	StyleTwoLevel
	StyleThreeLevel
)

// Bit layout of a 16-bit group address.
const (
	gaMainShift   = 11
	gaMiddleShift = 8

	gaMainMask     = 0x1F  // 5 bits
	gaMiddleMask   = 0x07  // 3 bits
	gaSubMask      = 0xFF  // 8 bits
	gaTwoLevelMask = 0x7FF // 11 bits
)

var styleNames = map[AddressStyle]string{
	StyleFree:       "Free",
	StyleTwoLevel:   "TwoLevel",
	StyleThreeLevel: "ThreeLevel",
}

// AddressStyles returns the accepted style names in declaration order.
func AddressStyles() []string {
	return []string{"Free", "TwoLevel", "ThreeLevel"}
}

// String returns the ETS name of the style.
func (s AddressStyle) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("AddressStyle(%d)", int(s))
}

// ParseAddressStyle resolves an ETS style name. Matching is exact and
// case-sensitive.
//
// Returns:
//   - AddressStyle: the matching style
//   - error: ErrInvalidAddressStyle if the name is unknown
func ParseAddressStyle(name string) (AddressStyle, error) {
	for style, n := range styleNames {
		if n == name {
			return style, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (expected one of %v)", ErrInvalidAddressStyle, name, AddressStyles())
}

// ResolveAddressStyle picks the style for a run. A non-empty override takes
// precedence over the project's declared style; whichever is chosen must be
// valid.
func ResolveAddressStyle(declared, override string) (AddressStyle, error) {
	if override != "" {
		return ParseAddressStyle(override)
	}
	return ParseAddressStyle(declared)
}

// FormatGroupAddress renders a raw group address in the given style.
//
// Example:
//
//	FormatGroupAddress(2817, StyleThreeLevel) // "1/3/1"
//	FormatGroupAddress(2817, StyleTwoLevel)   // "1/769"
//	FormatGroupAddress(2817, StyleFree)       // "2817"
func FormatGroupAddress(addr uint16, style AddressStyle) string {
	switch style {
	case StyleTwoLevel:
		return fmt.Sprintf("%d/%d", (addr>>gaMainShift)&gaMainMask, addr&gaTwoLevelMask)
	case StyleThreeLevel:
		return cemi.GroupAddr(addr).String()
	default:
		return strconv.FormatUint(uint64(addr), 10)
	}
}

// SplitThreeLevel returns the Main, Middle and Sub parts of a raw address.
func SplitThreeLevel(addr uint16) (main, middle, sub uint8) {
	//nolint:gosec // masked to fit uint8
	return uint8((addr >> gaMainShift) & gaMainMask), uint8((addr >> gaMiddleShift) & gaMiddleMask), uint8(addr & gaSubMask)
}
