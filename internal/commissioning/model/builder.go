package model

import (
	"errors"
	"fmt"

	"github.com/nerrad567/ets2ha/internal/commissioning/etsimport"
	"github.com/nerrad567/ets2ha/internal/knx"
)

// Logger is the logging interface used by Builder.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Placement is the location context inherited while walking the building
// structure. It is passed by value so each branch works on its own copy.
type Placement struct {
	Floor string
	Room  string
}

// Builder constructs a Model from a parsed ETS project.
type Builder struct {
	logger Logger
}

// NewBuilder creates a Builder that discards log output until SetLogger is
// called.
func NewBuilder() *Builder {
	return &Builder{logger: noopLogger{}}
}

// SetLogger sets the logger for build diagnostics.
func (b *Builder) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	b.logger = logger
}

// Build constructs the model.
//
// The addressing style is the project's declared style unless styleOverride
// is non-empty. Addresses without a usable datapoint are logged and left out
// of the registry.
//
// Returns:
//   - *Model: the populated model
//   - error: ErrMissingSection, knx.ErrInvalidAddressStyle or
//     ErrUnknownFunctionType; no partial model is returned
func (b *Builder) Build(project *etsimport.Project, styleOverride string) (*Model, error) {
	if project == nil || project.Info == nil {
		return nil, fmt.Errorf("%w: Project/ProjectInformation", ErrMissingSection)
	}

	styleName := project.Info.GroupAddressStyle
	if styleOverride != "" {
		styleName = styleOverride
	}
	b.logger.Info("Using project", "project", project.Info.Name, "address_style", styleName)

	style, err := knx.ResolveAddressStyle(project.Info.GroupAddressStyle, styleOverride)
	if err != nil {
		return nil, err
	}

	m := newModel()
	m.ProjectName = project.Info.Name
	m.Style = style

	if project.GroupRanges == nil {
		return nil, fmt.Errorf("%w: GroupAddresses/GroupRanges", ErrMissingSection)
	}
	b.buildRegistry(m, project.GroupRanges, style)

	if project.Locations == nil {
		return nil, fmt.Errorf("%w: Locations", ErrMissingSection)
	}
	if err := b.buildObjects(m, project.Locations, Placement{}); err != nil {
		return nil, err
	}

	m.stats.GroupAddresses = len(m.gaOrder)
	m.stats.Objects = len(m.objOrder)
	return m, nil
}

// buildRegistry walks the group range tree depth first, child ranges before
// the range's own addresses.
func (b *Builder) buildRegistry(m *Model, gr *etsimport.GroupRange, style knx.AddressStyle) {
	for i := range gr.Ranges {
		b.buildRegistry(m, &gr.Ranges[i], style)
	}
	for _, leaf := range gr.Addresses {
		b.addGroupAddress(m, leaf, style)
	}
}

func (b *Builder) addGroupAddress(m *Model, leaf etsimport.GroupAddress, style knx.AddressStyle) {
	address := knx.FormatGroupAddress(leaf.Address, style)

	dpt, err := knx.NormaliseDatapoint(leaf.DatapointType)
	if err != nil {
		m.stats.Discarded++
		if errors.Is(err, knx.ErrMissingDPT) {
			b.logger.Warn("no datapoint type, group address skipped",
				"address", address, "name", leaf.Name)
		} else {
			b.logger.Warn("cannot parse datapoint, group address skipped",
				"address", address, "name", leaf.Name, "datapoint", leaf.DatapointType)
		}
		return
	}
	if !dpt.HasCodec() {
		b.logger.Debug("datapoint has no codec", "address", address, "datapoint", dpt.String())
	}

	ga := &GroupAddress{
		id:          leaf.ID,
		name:        leaf.Name,
		description: leaf.Description,
		address:     address,
		datapoint:   dpt,
		Custom:      Custom{},
	}
	m.putGroupAddress(ga)
	b.logger.Debug("group address registered", "id", ga.id, "address", ga.address, "datapoint", dpt.String())
}

// buildObjects walks the building structure. place is this branch's own
// copy of the inherited context.
func (b *Builder) buildObjects(m *Model, space *etsimport.Space, place Placement) error {
	b.logger.Debug("space", "type", space.Type, "name", space.Name)

	if space.Type == etsimport.SpaceTypeFloor {
		place.Floor = space.Name
	}
	for i := range space.Spaces {
		if err := b.buildObjects(m, &space.Spaces[i], place); err != nil {
			return err
		}
	}

	if len(space.Functions) == 0 {
		return nil
	}
	// Functions are assumed to sit directly in their room.
	place.Room = space.Name

	for _, fn := range space.Functions {
		if len(fn.GroupAddressRefs) == 0 {
			m.stats.SkippedFunctions++
			b.logger.Debug("function has no group address, skipped", "id", fn.ID, "name", fn.Name)
			continue
		}

		kind, err := ParseFunctionType(fn.Type)
		if err != nil {
			return fmt.Errorf("function %q (%s): %w", fn.Name, fn.ID, err)
		}

		obj := &FunctionalObject{
			id:       fn.ID,
			name:     fn.Name,
			kind:     kind,
			addrRefs: append([]string(nil), fn.GroupAddressRefs...),
			room:     place.Room,
			floor:    place.Floor,
			Custom:   Custom{},
		}
		for _, ref := range obj.addrRefs {
			if ga, ok := m.gas[ref]; ok {
				ga.link(obj.id)
			}
		}
		m.putObject(obj)
		b.logger.Debug("functional object built", "id", obj.id, "name", obj.name, "type", kind.String(),
			"room", obj.room, "floor", obj.floor)
	}
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
