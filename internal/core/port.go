package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	"rtcports/internal/policies"
	"rtcports/internal/ports"
	"rtcports/internal/shared"
	"rtcports/internal/types"
)

// Port wraps a remote port reference. Its kind is fixed when the port is
// parsed; name and properties change only through Reparse. The connection
// list is fetched on first read and refetched only after invalidation.
//
// Create ports with ParsePort.
type Port struct {
	obj      ports.PortService
	owner    ports.TreeNode
	resolver ports.OwnerResolver
	kind     types.PortKind
	rule     connectRule

	// opMu serializes Connect and DisconnectAll on this port. It is never
	// taken while mu is held.
	opMu sync.Mutex

	mu          sync.Mutex
	name        string
	properties  *types.Properties
	connections lazySlot[[]*Connection]
	interfaces  lazySlot[[]*Interface]
	flights     singleflight.Group
}

// ConnectOptions are the optional parts of a connect request. An empty Name
// is replaced by the participating port names joined with "_"; an empty ID
// lets the framework assign one.
type ConnectOptions struct {
	Name       string
	ID         string
	Properties *types.Properties
}

type PortOption func(*Port)

// WithResolver sets the resolver used to locate the owners of connection
// endpoints. By default a port with an owner searches the owner's tree.
func WithResolver(resolver ports.OwnerResolver) PortOption {
	return func(p *Port) {
		p.resolver = resolver
	}
}

func newPort(obj ports.PortService, owner ports.TreeNode, kind types.PortKind, opts ...PortOption) *Port {
	p := &Port{
		obj:   obj,
		owner: owner,
		kind:  kind,
		rule:  ruleFor(kind),
	}
	if owner != nil {
		p.resolver = NewTreeResolver(owner.Root())
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// applyProfile replaces name and properties. Callers hold p.mu.
func (p *Port) applyProfile(profile types.PortProfile) {
	p.name = profile.Name
	if p.owner != nil {
		p.name = shared.StripOwnerPrefix(p.name, p.owner.InstanceName())
	}
	p.properties = DecodeProperties(profile.Properties)
}

func interfacesFromProfile(obj ports.PortService, profile types.PortProfile) []*Interface {
	result := make([]*Interface, 0, len(profile.Interfaces))
	for _, intf := range profile.Interfaces {
		result = append(result, newInterface(obj, intf))
	}
	return result
}

func (p *Port) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

func (p *Port) Kind() types.PortKind {
	return p.kind
}

// Properties returns a copy of the port's negotiable properties.
func (p *Port) Properties() *types.Properties {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.properties.Clone()
}

// Owner is the tree node the port was found on, or nil.
func (p *Port) Owner() ports.TreeNode {
	return p.owner
}

// Object is the underlying remote reference.
func (p *Port) Object() ports.PortService {
	return p.obj
}

// Connections returns the connections this port takes part in.
func (p *Port) Connections(ctx context.Context) ([]*Connection, error) {
	return loadSlot(ctx, &p.mu, &p.connections, &p.flights, "connections", p.fetchConnections)
}

func (p *Port) fetchConnections(ctx context.Context) ([]*Connection, error) {
	profiles, err := p.obj.GetConnectorProfiles(ctx)
	if err != nil {
		return nil, remoteError("get connector profiles", err)
	}
	conns := make([]*Connection, 0, len(profiles))
	for _, profile := range profiles {
		conns = append(conns, newConnection(profile, p, p.resolver))
	}
	log.Ctx(ctx).Debug().Str("port", p.Name()).Int("connections", len(conns)).Msg("connections fetched")
	return conns, nil
}

func (p *Port) IsConnected(ctx context.Context) (bool, error) {
	conns, err := p.Connections(ctx)
	if err != nil {
		return false, err
	}
	return len(conns) > 0, nil
}

// Interfaces returns the service interfaces of a service port. Other kinds
// have none.
func (p *Port) Interfaces(ctx context.Context) ([]*Interface, error) {
	if p.kind != types.PortKindService {
		return nil, nil
	}
	return loadSlot(ctx, &p.mu, &p.interfaces, &p.flights, "interfaces", func(ctx context.Context) ([]*Interface, error) {
		profile, err := p.obj.GetPortProfile(ctx)
		if err != nil {
			return nil, remoteError("get port profile", err)
		}
		return interfacesFromProfile(p.obj, profile), nil
	})
}

// InterfaceByName returns the interface with the given instance name, or nil.
func (p *Port) InterfaceByName(ctx context.Context, name string) (*Interface, error) {
	intfs, err := p.Interfaces(ctx)
	if err != nil {
		return nil, err
	}
	for _, intf := range intfs {
		if intf.InstanceName() == name {
			return intf, nil
		}
	}
	return nil, nil
}

// Connect connects this port to dests. Kind-specific checks and defaults run
// first, then every requested property is checked against the values this
// port and each destination advertise. Nothing is sent to the framework
// unless all checks pass. On success the connection caches of this port and
// all destinations are invalidated.
func (p *Port) Connect(ctx context.Context, dests []*Port, opts ConnectOptions) error {
	if len(dests) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("connect requires at least one destination port")
	}
	if err := p.connect(ctx, dests, opts); err != nil {
		return err
	}
	for _, dest := range dests {
		dest.ReparseConnections()
	}
	return nil
}

func (p *Port) connect(ctx context.Context, dests []*Port, opts ConnectOptions) error {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	props := opts.Properties.Clone()
	if err := p.rule(ctx, p, dests, props); err != nil {
		return err
	}
	advertised := make([]*types.Properties, 0, len(dests)+1)
	advertised = append(advertised, p.Properties())
	for _, dest := range dests {
		advertised = append(advertised, dest.Properties())
	}
	if violation, found := policies.FindViolation(props, advertised...); found {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("property %s=%s not in allowed values %q", violation.Key, violation.Requested, violation.Allowed)).
			WithCause(ErrIncompatibleNegotiation)
	}

	name := opts.Name
	if name == "" {
		name = defaultConnectionName(p, dests)
	}
	objs := make([]ports.PortService, 0, len(dests)+1)
	objs = append(objs, p.obj)
	for _, dest := range dests {
		objs = append(objs, dest.obj)
	}
	code, _, err := p.obj.Connect(ctx, ports.ConnectorProfile{
		Name:        name,
		ConnectorID: opts.ID,
		Ports:       objs,
		Properties:  EncodeProperties(props),
	})
	if err != nil {
		return remoteError("connect", err)
	}
	if code != types.ReturnOK {
		log.Ctx(ctx).Warn().Str("port", p.Name()).Str("code", code.String()).Msg("connection rejected")
		return connectionFailed(code)
	}
	p.ReparseConnections()
	log.Ctx(ctx).Debug().Str("port", p.Name()).Str("connection", name).Int("destinations", len(dests)).Msg("connection established")
	return nil
}

func defaultConnectionName(p *Port, dests []*Port) string {
	names := make([]string, 0, len(dests)+1)
	names = append(names, p.Name())
	for _, dest := range dests {
		names = append(names, dest.Name())
	}
	return strings.Join(names, "_")
}

// DisconnectAll disconnects every connection of this port through this
// port's reference and invalidates the connection cache. Every connection
// is attempted; failures are returned together.
func (p *Port) DisconnectAll(ctx context.Context) error {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	conns, err := p.Connections(ctx)
	if err != nil {
		return err
	}
	var errs error
	for _, conn := range conns {
		code, err := p.obj.Disconnect(ctx, conn.ID())
		if err != nil {
			errs = multierr.Append(errs, remoteError("disconnect", err))
			continue
		}
		if code != types.ReturnOK {
			errs = multierr.Append(errs, disconnectFailed(conn.ID(), code))
		}
	}
	p.ReparseConnections()
	return errs
}

func disconnectFailed(id string, code types.ReturnCode) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("framework rejected disconnect of %s: %s", id, code)).
		WithCause(ErrDisconnectFailed)
}

// ConnectionsWith returns the connections that include this port and every
// port in dests.
func (p *Port) ConnectionsWith(ctx context.Context, dests ...*Port) ([]*Connection, error) {
	conns, err := p.Connections(ctx)
	if err != nil {
		return nil, err
	}
	var result []*Connection
	for _, conn := range conns {
		ok, err := conn.HasPort(ctx, p)
		if err != nil {
			return nil, err
		}
		for _, dest := range dests {
			if !ok {
				break
			}
			if ok, err = conn.HasPort(ctx, dest); err != nil {
				return nil, err
			}
		}
		if ok {
			result = append(result, conn)
		}
	}
	return result, nil
}

// ConnectionWith returns the first connection between this port and dest.
//
// Deprecated: a pair of ports may share several connections; use
// ConnectionsWith.
func (p *Port) ConnectionWith(ctx context.Context, dest *Port) (*Connection, error) {
	conns, err := p.ConnectionsWith(ctx, dest)
	if err != nil || len(conns) == 0 {
		return nil, err
	}
	return conns[0], nil
}

func (p *Port) ConnectionByID(ctx context.Context, id string) (*Connection, error) {
	return p.findConnection(ctx, func(c *Connection) bool { return c.ID() == id })
}

func (p *Port) ConnectionByName(ctx context.Context, name string) (*Connection, error) {
	return p.findConnection(ctx, func(c *Connection) bool { return c.Name() == name })
}

func (p *Port) findConnection(ctx context.Context, match func(*Connection) bool) (*Connection, error) {
	conns, err := p.Connections(ctx)
	if err != nil {
		return nil, err
	}
	for _, conn := range conns {
		if match(conn) {
			return conn, nil
		}
	}
	return nil, nil
}

// Reparse refetches the port profile and clears the cached connections
// and interfaces. They are fetched again on next access.
func (p *Port) Reparse(ctx context.Context) error {
	profile, err := p.obj.GetPortProfile(ctx)
	if err != nil {
		return remoteError("get port profile", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyProfile(profile)
	p.interfaces.invalidate()
	p.connections.invalidate()
	return nil
}

// ReparseConnections clears the cached connections only.
func (p *Port) ReparseConnections() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connections.invalidate()
}
