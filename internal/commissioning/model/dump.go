package model

// Dump is a serialisable view of a model, used to inspect what a project
// produced before writing override rules.
type Dump struct {
	Project        string             `yaml:"project"`
	AddressStyle   string             `yaml:"address_style"`
	GroupAddresses []GroupAddressDump `yaml:"group_addresses"`
	Objects        []ObjectDump       `yaml:"objects"`
}

// GroupAddressDump is the dumped form of a GroupAddress.
type GroupAddressDump struct {
	ID          string   `yaml:"id"`
	Address     string   `yaml:"address"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Datapoint   string   `yaml:"datapoint"`
	Objects     []string `yaml:"objects,omitempty"`
	Custom      Custom   `yaml:"custom,omitempty"`
}

// ObjectDump is the dumped form of a FunctionalObject.
type ObjectDump struct {
	ID             string       `yaml:"id"`
	Name           string       `yaml:"name"`
	Type           FunctionType `yaml:"type"`
	Room           string       `yaml:"room,omitempty"`
	Floor          string       `yaml:"floor,omitempty"`
	GroupAddresses []string     `yaml:"group_addresses"`
	Custom         Custom       `yaml:"custom,omitempty"`
}

// Dump returns a snapshot of the model in construction order.
func (m *Model) Dump() Dump {
	d := Dump{
		Project:      m.ProjectName,
		AddressStyle: m.Style.String(),
	}
	for _, ga := range m.GroupAddresses() {
		d.GroupAddresses = append(d.GroupAddresses, GroupAddressDump{
			ID:          ga.id,
			Address:     ga.address,
			Name:        ga.name,
			Description: ga.description,
			Datapoint:   ga.datapoint.String(),
			Objects:     ga.Objects(),
			Custom:      ga.Custom,
		})
	}
	for _, obj := range m.Objects() {
		d.Objects = append(d.Objects, ObjectDump{
			ID:             obj.id,
			Name:           obj.name,
			Type:           obj.kind,
			Room:           obj.room,
			Floor:          obj.floor,
			GroupAddresses: obj.GroupAddressIDs(),
			Custom:         obj.Custom,
		})
	}
	return d
}
