package generate

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/ets2ha/internal/commissioning/model"
	"github.com/nerrad567/ets2ha/internal/commissioning/override"
	"github.com/nerrad567/ets2ha/internal/knx"
)

// Home Assistant domains produced from function types.
const (
	DomainLight = "light"
	DomainCover = "cover"
)

// Home Assistant KNX property names.
const (
	PropertyName       = "name"
	PropertyAddress    = "address"
	PropertyMoveLong   = "move_long_address"
	PropertyStop       = "stop_address"
	PropertyState      = "state_address"
	PropertyBrightness = "brightness_address"
	PropertyPosition   = "position_address"
)

// documentRoot is the top-level key of the generated document.
const documentRoot = "knx"

// Entity is one emitted Home Assistant entry: name plus address properties,
// and anything seeded from ha_init.
type Entity map[string]any

// Document is the Home Assistant knx: section, grouped by domain.
type Document struct {
	Domains map[string][]Entity
}

// Render marshals the document as YAML under the knx key.
func (d *Document) Render() ([]byte, error) {
	out, err := yaml.Marshal(map[string]any{documentRoot: d.Domains})
	if err != nil {
		return nil, fmt.Errorf("marshalling home assistant document: %w", err)
	}
	return out, nil
}

// HomeAssistant generates a Document from functional objects.
type HomeAssistant struct {
	logger Logger
}

// NewHomeAssistant creates the homeass generator.
func NewHomeAssistant(logger Logger) *HomeAssistant {
	return &HomeAssistant{logger: orNoop(logger)}
}

// Format implements Generator.
func (g *HomeAssistant) Format() string { return FormatHomeAssistant }

// Generate emits one Entity per object with a supported domain, in object
// order. Within an object the first address resolved to a property wins.
func (g *HomeAssistant) Generate(m *model.Model) (Artifact, Statistics, error) {
	var stats Statistics

	for _, ga := range m.GroupAddresses() {
		if len(ga.Objects()) == 0 {
			stats.Orphans++
			g.logger.Warn("group address not in any function; create an ETS function or add an override rule",
				"address", ga.Address(), "name", ga.Name())
		}
	}

	doc := &Document{Domains: make(map[string][]Entity)}
	for _, obj := range m.Objects() {
		record := g.seed(obj)
		if _, ok := record[PropertyName]; !ok {
			record[PropertyName] = obj.Name()
		}

		domain, ok := obj.Custom.String(override.KeyHAType)
		if !ok {
			domain, ok = g.domainFor(obj.Type(), obj.Name(), obj.Room())
			if !ok {
				stats.SkippedObjects++
				continue
			}
		}

		for _, ref := range obj.GroupAddressIDs() {
			ga, ok := m.GroupAddress(ref)
			if !ok {
				continue
			}
			prop, ok := g.propertyFor(domain, ga)
			if !ok {
				stats.SkippedReferences++
				continue
			}
			if existing, taken := record[prop]; taken {
				stats.Conflicts++
				g.logger.Error("property already set, ignoring address",
					"address", ga.Address(), "domain", domain, "datapoint", ga.Datapoint().String(),
					"name", ga.Name(), "property", prop, "existing", existing)
				continue
			}
			record[prop] = ga.Address()
		}

		doc.Domains[domain] = append(doc.Domains[domain], record)
		stats.Emitted++
	}
	return doc, stats, nil
}

// seed starts a record from a copy of the object's ha_init map.
func (g *HomeAssistant) seed(obj *model.FunctionalObject) Entity {
	raw, ok := obj.Custom[override.KeyHAInit]
	if !ok || raw == nil {
		return Entity{}
	}
	var src map[string]any
	switch v := raw.(type) {
	case map[string]any:
		src = v
	case model.Custom:
		src = v
	case Entity:
		src = v
	case map[string]string:
		src = make(map[string]any, len(v))
		for k, s := range v {
			src[k] = s
		}
	default:
		g.logger.Warn("ha_init is not a map, ignored", "object", obj.Name(), "type", fmt.Sprintf("%T", raw))
		return Entity{}
	}
	record := make(Entity, len(src))
	for k, v := range src {
		record[k] = cloneValue(v)
	}
	return record
}

// domainFor maps a function type to a domain. Known kinds without a mapping
// log a warning; anything else is logged as an error.
func (g *HomeAssistant) domainFor(kind model.FunctionType, name, room string) (string, bool) {
	switch kind {
	case model.FunctionSwitchableLight, model.FunctionDimmableLight:
		return DomainLight, true
	case model.FunctionSunProtection:
		return DomainCover, true
	case model.FunctionCustom,
		model.FunctionHeatingRadiator,
		model.FunctionHeatingFloor,
		model.FunctionHeatingSwitchingVariable,
		model.FunctionHeatingContinuousVariable:
		g.logger.Warn("function type not implemented", "object", name, "room", room, "type", kind.String())
	default:
		g.logger.Error("function type not supported, please report", "object", name, "room", room, "type", kind.String())
	}
	return "", false
}

// propertyFor resolves the record key an address is written under.
func (g *HomeAssistant) propertyFor(domain string, ga *model.GroupAddress) (string, bool) {
	logArgs := []any{"address", ga.Address(), "domain", domain, "datapoint", ga.Datapoint().String(), "name", ga.Name()}

	if raw, ok := ga.Custom[override.KeyHAAddressType]; ok {
		if prop, isString := raw.(string); isString && prop != "" {
			return prop, true
		}
		g.logger.Warn("unexpected nil property name", logArgs...)
		return "", false
	}

	switch ga.Datapoint() {
	case knx.DPTSwitch:
		return PropertyAddress, true
	case knx.DPTUpDown:
		return PropertyMoveLong, true
	case knx.DPTStart:
		return PropertyStop, true
	case knx.DPTState:
		return PropertyState, true
	case knx.DPTDimmingControl:
		// Relative dimming is driven by push buttons, not Home Assistant.
		g.logger.Debug("ignoring datapoint", logArgs...)
		return "", false
	case knx.DPTPercentage:
		switch domain {
		case DomainLight:
			return PropertyBrightness, true
		case DomainCover:
			return PropertyPosition, true
		}
	}
	g.logger.Warn("no mapping for datapoint", logArgs...)
	return "", false
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
