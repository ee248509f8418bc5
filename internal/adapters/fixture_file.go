package adapters

import (
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"rtcports/internal/shared"
	"rtcports/internal/types"
)

type FixtureFileAdapter struct{}

func NewFixtureFileAdapter() FixtureFileAdapter {
	return FixtureFileAdapter{}
}

func (a FixtureFileAdapter) LoadFixture(path string) (types.Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Fixture{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("fixture file not found").
			WithCause(err)
	}
	var fixture types.Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return types.Fixture{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse fixture yaml").
			WithCause(err)
	}
	applyNodeDefaults(&fixture.Root)
	if err := validateFixture(fixture); err != nil {
		return types.Fixture{}, err
	}
	return fixture, nil
}

func applyNodeDefaults(node *types.FixtureNode) {
	if node.Kind == "" {
		if len(node.Ports) > 0 {
			node.Kind = types.NodeKindComponent
		} else {
			node.Kind = types.NodeKindDirectory
		}
	}
	for i := range node.Ports {
		for j := range node.Ports[i].Interfaces {
			intf := &node.Ports[i].Interfaces[j]
			intf.Polarity = types.Polarity(strings.ToLower(strings.TrimSpace(string(intf.Polarity))))
		}
	}
	for i := range node.Children {
		applyNodeDefaults(&node.Children[i])
	}
}

func validateFixture(fixture types.Fixture) error {
	if fixture.Root.Name == "" {
		return invalidFixture("root node has no name")
	}
	known := map[string]bool{}
	for _, entry := range fixturePorts(fixture) {
		if entry.port.Name == "" {
			return invalidFixture(fmt.Sprintf("component %s has a port without a name", entry.componentPath))
		}
		switch entry.port.Type {
		case "", types.PortKindGeneric, types.PortKindDataIn, types.PortKindDataOut, types.PortKindService:
		default:
			return invalidFixture(fmt.Sprintf("port %s has unknown type %q", entry.path, entry.port.Type))
		}
		for _, intf := range entry.port.Interfaces {
			switch intf.Polarity {
			case types.PolarityProvided, types.PolarityRequired:
			default:
				return invalidFixture(fmt.Sprintf("port %s interface %q has unknown polarity %q", entry.path, intf.InstanceName, intf.Polarity))
			}
		}
		if known[entry.path] {
			return invalidFixture(fmt.Sprintf("port %s declared twice", entry.path))
		}
		known[entry.path] = true
	}
	for _, conn := range fixture.Connections {
		if len(conn.Ports) == 0 {
			return invalidFixture(fmt.Sprintf("connection %q has no ports", conn.Name))
		}
		for _, path := range conn.Ports {
			if !known[path] {
				return invalidFixture(fmt.Sprintf("connection %q references unknown port %s", conn.Name, path))
			}
		}
	}
	return nil
}

func invalidFixture(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("invalid fixture: " + msg)
}

type fixturePortEntry struct {
	componentPath string
	instanceName  string
	path          string
	port          types.FixturePort
}

// fixturePorts lists every component port of the fixture in document order.
func fixturePorts(fixture types.Fixture) []fixturePortEntry {
	var entries []fixturePortEntry
	var walk func(node types.FixtureNode, parent string)
	walk = func(node types.FixtureNode, parent string) {
		path := parent + "/" + node.Name
		if node.Kind == types.NodeKindComponent {
			for _, port := range node.Ports {
				entries = append(entries, fixturePortEntry{
					componentPath: path,
					instanceName:  shared.InstanceNameFromNode(node.Name),
					path:          shared.JoinPortPath(path, port.Name),
					port:          port,
				})
			}
		}
		for _, child := range node.Children {
			walk(child, path)
		}
	}
	walk(fixture.Root, "")
	return entries
}

// portProfile is the framework profile a component registers for port:
// "<instance>.<port>" with the declared type recorded as port.port_type.
func portProfile(entry fixturePortEntry) types.PortProfile {
	props := types.NewProperties()
	if entry.port.Type != "" {
		props.Set(types.PropPortType, string(entry.port.Type))
	}
	for _, pair := range entry.port.Properties.Pairs() {
		props.Set(pair.Name, pair.Value)
	}
	return types.PortProfile{
		Name:       entry.instanceName + "." + entry.port.Name,
		Interfaces: append([]types.InterfaceProfile(nil), entry.port.Interfaces...),
		Properties: props.Pairs(),
	}
}
