// Package knx holds the KNX primitives shared by the ETS converter.
//
// It covers two small but exacting concerns: rendering raw 16-bit group
// addresses in the addressing style a project was engineered with, and
// normalising ETS datapoint labels to the "main.sub" form used by
// downstream platforms.
//
// # Group Addresses
//
// A KNX group address is a 16-bit value. ETS projects declare one of three
// presentation styles:
//
//   - Free:       the decimal value (e.g. "2817")
//   - TwoLevel:   Main/Sub, 5+11 bits (e.g. "1/769")
//   - ThreeLevel: Main/Middle/Sub, 5+3+8 bits (e.g. "1/3/1")
//
// Example:
//
//	style, err := knx.ParseAddressStyle("ThreeLevel")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(knx.FormatGroupAddress(2817, style)) // "1/3/1"
//
// # Datapoint Types
//
// ETS stores datapoint subtypes as "DPST-<main>-<sub>". NormaliseDatapoint
// converts them to "<main>.<sub:03d>":
//
//	dp, err := knx.NormaliseDatapoint("DPST-5-1") // "5.001"
package knx
