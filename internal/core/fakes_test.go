package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"rtcports/internal/ports"
	"rtcports/internal/shared"
	"rtcports/internal/types"
)

type storedConnector struct {
	name       string
	id         string
	refs       []string
	properties []types.NameValue
}

type fakeFramework struct {
	mu          sync.Mutex
	ports       map[string]*fakePort
	connectors  []storedConnector
	nextID      int
	connectCode types.ReturnCode

	disconnectCodes map[string]types.ReturnCode
	disconnectErrs  map[string]error
}

func newFakeFramework() *fakeFramework {
	return &fakeFramework{ports: map[string]*fakePort{}}
}

func (f *fakeFramework) addPort(ref string, name string, props ...types.NameValue) *fakePort {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &fakePort{fw: f, ref: ref, profile: types.PortProfile{Name: name, Properties: props}}
	f.ports[ref] = p
	return p
}

func (f *fakeFramework) connectorByID(id string) (storedConnector, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.connectors {
		if c.id == id {
			return c, true
		}
	}
	return storedConnector{}, false
}

func (f *fakeFramework) connectorCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.connectors)
}

type fakePort struct {
	fw  *fakeFramework
	ref string

	profile types.PortProfile

	profileCalls    atomic.Int32
	connectorCalls  atomic.Int32
	connectCalls    atomic.Int32
	disconnectCalls atomic.Int32
	connectorGate   chan struct{}
}

func (p *fakePort) Ref() string {
	return p.ref
}

func (p *fakePort) setInterfaces(intfs ...types.InterfaceProfile) {
	p.fw.mu.Lock()
	defer p.fw.mu.Unlock()
	p.profile.Interfaces = intfs
}

func (p *fakePort) rename(name string) {
	p.fw.mu.Lock()
	defer p.fw.mu.Unlock()
	p.profile.Name = name
}

func (p *fakePort) GetPortProfile(context.Context) (types.PortProfile, error) {
	p.profileCalls.Add(1)
	p.fw.mu.Lock()
	defer p.fw.mu.Unlock()
	profile := p.profile
	profile.Interfaces = append([]types.InterfaceProfile(nil), p.profile.Interfaces...)
	profile.Properties = append([]types.NameValue(nil), p.profile.Properties...)
	return profile, nil
}

func (p *fakePort) GetConnectorProfiles(context.Context) ([]ports.ConnectorProfile, error) {
	p.connectorCalls.Add(1)
	if p.connectorGate != nil {
		<-p.connectorGate
	}
	p.fw.mu.Lock()
	defer p.fw.mu.Unlock()
	var result []ports.ConnectorProfile
	for _, c := range p.fw.connectors {
		if !containsRef(c.refs, p.ref) {
			continue
		}
		objs := make([]ports.PortService, 0, len(c.refs))
		for _, ref := range c.refs {
			objs = append(objs, p.fw.ports[ref])
		}
		result = append(result, ports.ConnectorProfile{
			Name:        c.name,
			ConnectorID: c.id,
			Ports:       objs,
			Properties:  append([]types.NameValue(nil), c.properties...),
		})
	}
	return result, nil
}

func (p *fakePort) Connect(_ context.Context, profile ports.ConnectorProfile) (types.ReturnCode, ports.ConnectorProfile, error) {
	p.connectCalls.Add(1)
	p.fw.mu.Lock()
	defer p.fw.mu.Unlock()
	if p.fw.connectCode != types.ReturnOK {
		return p.fw.connectCode, profile, nil
	}
	if profile.ConnectorID == "" {
		p.fw.nextID++
		profile.ConnectorID = fmt.Sprintf("conn-%d", p.fw.nextID)
	}
	refs := make([]string, 0, len(profile.Ports))
	for _, obj := range profile.Ports {
		refs = append(refs, obj.Ref())
	}
	p.fw.connectors = append(p.fw.connectors, storedConnector{
		name:       profile.Name,
		id:         profile.ConnectorID,
		refs:       refs,
		properties: profile.Properties,
	})
	return types.ReturnOK, profile, nil
}

func (p *fakePort) Disconnect(_ context.Context, id string) (types.ReturnCode, error) {
	p.disconnectCalls.Add(1)
	p.fw.mu.Lock()
	defer p.fw.mu.Unlock()
	if err, ok := p.fw.disconnectErrs[id]; ok {
		return types.ReturnError, err
	}
	if code, ok := p.fw.disconnectCodes[id]; ok {
		return code, nil
	}
	for i, c := range p.fw.connectors {
		if c.id == id && containsRef(c.refs, p.ref) {
			p.fw.connectors = append(p.fw.connectors[:i], p.fw.connectors[i+1:]...)
			return types.ReturnOK, nil
		}
	}
	return types.ReturnBadParameter, nil
}

func containsRef(refs []string, ref string) bool {
	for _, candidate := range refs {
		if candidate == ref {
			return true
		}
	}
	return false
}

type fakeNode struct {
	name     string
	kind     types.NodeKind
	parent   *fakeNode
	children []*fakeNode
	objs     []ports.PortService
}

func newFakeDir(name string) *fakeNode {
	return &fakeNode{name: name, kind: types.NodeKindDirectory}
}

func (n *fakeNode) addComponent(name string, objs ...ports.PortService) *fakeNode {
	child := &fakeNode{name: name, kind: types.NodeKindComponent, parent: n, objs: objs}
	n.children = append(n.children, child)
	return child
}

func (n *fakeNode) InstanceName() string {
	if n.kind == types.NodeKindComponent {
		return shared.InstanceNameFromNode(n.name)
	}
	return n.name
}

func (n *fakeNode) FullPathStr() string {
	parts := []string{}
	for node := n; node != nil; node = node.parent {
		parts = append([]string{node.name}, parts...)
	}
	return "/" + strings.Join(parts, "/")
}

func (n *fakeNode) Kind() types.NodeKind {
	return n.kind
}

func (n *fakeNode) Owner() ports.TreeNode {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *fakeNode) Root() ports.TreeNode {
	node := n
	for node.parent != nil {
		node = node.parent
	}
	return node
}

func (n *fakeNode) Search(match func(ports.TreeNode) bool, kinds ...types.NodeKind) []ports.TreeNode {
	var result []ports.TreeNode
	kindOK := len(kinds) == 0
	for _, kind := range kinds {
		if kind == n.kind {
			kindOK = true
		}
	}
	if kindOK && match(n) {
		result = append(result, n)
	}
	for _, child := range n.children {
		result = append(result, child.Search(match, kinds...)...)
	}
	return result
}

func (n *fakeNode) PortObjects() []ports.PortService {
	return n.objs
}

// mapResolver knows the owners of a fixed set of references.
type mapResolver map[string]ports.PortOwner

func (m mapResolver) FindOwner(_ context.Context, obj ports.PortService) (ports.PortOwner, bool) {
	owner, ok := m[obj.Ref()]
	return owner, ok
}

func nv(name string, value string) types.NameValue {
	return types.NameValue{Name: name, Value: value}
}

func dataOutProfile() []types.NameValue {
	return []types.NameValue{
		nv(types.PropPortType, string(types.PortKindDataOut)),
		nv(types.PropDataType, "TimedLong"),
		nv(types.PropDataflowType, "push,pull"),
		nv(types.PropInterfaceType, "corba_cdr"),
		nv(types.PropSubscriptionType, "flush,new,periodic"),
	}
}

func dataInProfile() []types.NameValue {
	return []types.NameValue{
		nv(types.PropPortType, string(types.PortKindDataIn)),
		nv(types.PropDataType, "TimedLong"),
		nv(types.PropDataflowType, "push, pull"),
		nv(types.PropInterfaceType, "corba_cdr"),
		nv(types.PropSubscriptionType, "Any"),
	}
}

func serviceProfile() []types.NameValue {
	return []types.NameValue{nv(types.PropPortType, string(types.PortKindService))}
}
