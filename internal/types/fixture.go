package types

// Fixture describes a component tree and the framework state behind it.
type Fixture struct {
	Root        FixtureNode         `yaml:"root"`
	Connections []FixtureConnection `yaml:"connections,omitempty"`
}

type FixtureNode struct {
	Name     string        `yaml:"name"`
	Kind     NodeKind      `yaml:"kind,omitempty"`
	Children []FixtureNode `yaml:"children,omitempty"`
	Ports    []FixturePort `yaml:"ports,omitempty"`
}

// FixturePort is a port as registered by its component. Name is the short
// port name; the framework profile name is prefixed with the component's
// instance name.
type FixturePort struct {
	Name       string             `yaml:"name"`
	Type       PortKind           `yaml:"type,omitempty"`
	Properties *Properties        `yaml:"properties,omitempty"`
	Interfaces []InterfaceProfile `yaml:"interfaces,omitempty"`
}

// FixtureConnection is a connection present before any client acts. Ports
// are full port paths (/dir/comp.rtc:port).
type FixtureConnection struct {
	ID         string      `yaml:"id,omitempty"`
	Name       string      `yaml:"name,omitempty"`
	Ports      []string    `yaml:"ports"`
	Properties *Properties `yaml:"properties,omitempty"`
}
