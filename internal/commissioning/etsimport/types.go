package etsimport

// Project is the parsed content of an ETS project archive.
//
// Any of the three sections may be nil when the corresponding XML element is
// absent.
type Project struct {
	// Info comes from Project/ProjectInformation in project.xml.
	Info *ProjectInfo

	// GroupRanges is the GroupAddresses/GroupRanges element of the
	// installation. It carries no name or address itself.
	GroupRanges *GroupRange

	// Locations is the Locations element of the installation, the root of
	// the building structure.
	Locations *Space
}

// ProjectInfo holds project level metadata.
type ProjectInfo struct {
	Name string

	// GroupAddressStyle is one of "Free", "TwoLevel", "ThreeLevel".
	GroupAddressStyle string
}

// GroupRange is a node of the group address tree.
type GroupRange struct {
	Name      string
	Ranges    []GroupRange
	Addresses []GroupAddress
}

// GroupAddress is a leaf of the group address tree as stored by ETS.
type GroupAddress struct {
	// ID is the ETS internal identifier (e.g. "P-0341-0_GA-1").
	ID          string
	Name        string
	Description string

	// Address is the raw 16-bit group address.
	Address uint16

	// DatapointType is the raw label, e.g. "DPST-1-1". Empty when unset.
	DatapointType string
}

// Space is a node of the building structure: building, floor, room,
// corridor, distribution board and so on.
type Space struct {
	// Type is the ETS space type ("Building", "Floor", "Room", ...). Empty
	// for the Locations root.
	Type      string
	Name      string
	Spaces    []Space
	Functions []Function
}

// Function is an ETS function (a logical device behaviour) placed in a space.
type Function struct {
	ID   string
	Name string

	// Type is the coded function type, e.g. "FT-1".
	Type string

	// GroupAddressRefs are the ETS ids of the referenced group addresses,
	// in document order.
	GroupAddressRefs []string
}

// Space types with special meaning during traversal.
const (
	SpaceTypeFloor = "Floor"
)
