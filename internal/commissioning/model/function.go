package model

import (
	"fmt"
	"regexp"
	"strconv"
)

// FunctionType is the kind of an ETS function.
type FunctionType int

// Function kinds known to ETS.
const (
	FunctionCustom FunctionType = iota
	FunctionSwitchableLight
	FunctionDimmableLight
	FunctionSunProtection
	FunctionHeatingRadiator
	FunctionHeatingFloor
	FunctionHeatingSwitchingVariable
	FunctionHeatingContinuousVariable
)

var functionNames = map[FunctionType]string{
	FunctionCustom:                    "custom",
	FunctionSwitchableLight:           "switchable_light",
	FunctionDimmableLight:             "dimmable_light",
	FunctionSunProtection:             "sun_protection",
	FunctionHeatingRadiator:           "heating_radiator",
	FunctionHeatingFloor:              "heating_floor",
	FunctionHeatingSwitchingVariable:  "heating_switching_variable",
	FunctionHeatingContinuousVariable: "heating_continuous_variable",
}

// knownFunctions maps the FT-<n> index to a kind. The numbering comes from
// knx_master.xml; positions 6 and 7 repeat dimmable_light and sun_protection.
var knownFunctions = []FunctionType{
	FunctionCustom,
	FunctionSwitchableLight,
	FunctionDimmableLight,
	FunctionSunProtection,
	FunctionHeatingRadiator,
	FunctionHeatingFloor,
	FunctionDimmableLight,
	FunctionSunProtection,
	FunctionHeatingSwitchingVariable,
	FunctionHeatingContinuousVariable,
}

var reFunctionType = regexp.MustCompile(`^FT-([0-9]+)$`)

// ParseFunctionType resolves a coded ETS function type such as "FT-1".
//
// Returns ErrUnknownFunctionType if the label is malformed or the index is
// outside the known table.
func ParseFunctionType(label string) (FunctionType, error) {
	m := reFunctionType.FindStringSubmatch(label)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFunctionType, label)
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil || idx >= len(knownFunctions) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFunctionType, label)
	}
	return knownFunctions[idx], nil
}

// String returns the snake_case name of the kind.
func (t FunctionType) String() string {
	if name, ok := functionNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FunctionType(%d)", int(t))
}

// Known reports whether t is one of the declared kinds.
func (t FunctionType) Known() bool {
	_, ok := functionNames[t]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (t FunctionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
