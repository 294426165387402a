package model

import (
	"slices"

	"github.com/nerrad567/ets2ha/internal/knx"
)

// Custom is the per-entity extension map written by override hooks and read
// by generators. Keys are free-form; see the override package for the keys
// generators understand.
type Custom map[string]any

// String returns the value stored under key if it is a non-empty string.
func (c Custom) String(key string) (string, bool) {
	s, ok := c[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// GroupAddress is a registered group address. Only Custom may change after
// the model is built.
type GroupAddress struct {
	id          string
	name        string
	description string
	address     string
	datapoint   knx.DPT
	objects     []string

	Custom Custom
}

// ID returns the ETS identifier.
func (g *GroupAddress) ID() string { return g.id }

// Name returns the ETS name.
func (g *GroupAddress) Name() string { return g.name }

// Description returns the ETS description, possibly empty.
func (g *GroupAddress) Description() string { return g.description }

// Address returns the formatted address, e.g. "1/3/1".
func (g *GroupAddress) Address() string { return g.address }

// Datapoint returns the normalised datapoint type.
func (g *GroupAddress) Datapoint() knx.DPT { return g.datapoint }

// Objects returns the ids of the functional objects referencing this
// address, in the order they were linked.
func (g *GroupAddress) Objects() []string { return slices.Clone(g.objects) }

// link records a referencing object. Each id is kept once.
func (g *GroupAddress) link(objectID string) {
	if !slices.Contains(g.objects, objectID) {
		g.objects = append(g.objects, objectID)
	}
}

// FunctionalObject is an ETS function resolved to a kind and a location.
// Only Custom may change after the model is built.
type FunctionalObject struct {
	id       string
	name     string
	kind     FunctionType
	addrRefs []string
	room     string
	floor    string

	Custom Custom
}

// ID returns the ETS identifier.
func (o *FunctionalObject) ID() string { return o.id }

// Name returns the ETS name.
func (o *FunctionalObject) Name() string { return o.name }

// Type returns the function kind.
func (o *FunctionalObject) Type() FunctionType { return o.kind }

// GroupAddressIDs returns the referenced group address ids in document order.
// Duplicates are preserved; ids may refer to addresses absent from the
// registry.
func (o *FunctionalObject) GroupAddressIDs() []string { return slices.Clone(o.addrRefs) }

// Room returns the name of the space that directly owns the function.
func (o *FunctionalObject) Room() string { return o.room }

// Floor returns the name of the enclosing floor, or "" if there is none.
func (o *FunctionalObject) Floor() string { return o.floor }

// Statistics summarises a model build.
type Statistics struct {
	GroupAddresses   int // registered
	Discarded        int // addresses without a usable datapoint
	Objects          int // functional objects built
	SkippedFunctions int // functions with no group address reference
}

// Model is the result of a build: both collections in construction order.
type Model struct {
	// ProjectName is the display name from ProjectInformation.
	ProjectName string

	// Style is the addressing style the addresses were formatted with.
	Style knx.AddressStyle

	gaOrder  []string
	gas      map[string]*GroupAddress
	objOrder []string
	objs     map[string]*FunctionalObject

	stats Statistics
}

func newModel() *Model {
	return &Model{
		gas:  make(map[string]*GroupAddress),
		objs: make(map[string]*FunctionalObject),
	}
}

// GroupAddresses returns the registry in insertion order.
func (m *Model) GroupAddresses() []*GroupAddress {
	out := make([]*GroupAddress, 0, len(m.gaOrder))
	for _, id := range m.gaOrder {
		out = append(out, m.gas[id])
	}
	return out
}

// GroupAddress looks up a registered address by id.
func (m *Model) GroupAddress(id string) (*GroupAddress, bool) {
	ga, ok := m.gas[id]
	return ga, ok
}

// Objects returns the functional objects in insertion order.
func (m *Model) Objects() []*FunctionalObject {
	out := make([]*FunctionalObject, 0, len(m.objOrder))
	for _, id := range m.objOrder {
		out = append(out, m.objs[id])
	}
	return out
}

// Object looks up a functional object by id.
func (m *Model) Object(id string) (*FunctionalObject, bool) {
	obj, ok := m.objs[id]
	return obj, ok
}

// Statistics returns the counters collected while building.
func (m *Model) Statistics() Statistics {
	return m.stats
}

// putGroupAddress inserts or replaces an entry. A replaced id keeps its
// original position.
func (m *Model) putGroupAddress(ga *GroupAddress) {
	if _, exists := m.gas[ga.id]; !exists {
		m.gaOrder = append(m.gaOrder, ga.id)
	}
	m.gas[ga.id] = ga
}

func (m *Model) putObject(obj *FunctionalObject) {
	if _, exists := m.objs[obj.id]; !exists {
		m.objOrder = append(m.objOrder, obj.id)
	}
	m.objs[obj.id] = obj
}
