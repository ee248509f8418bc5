package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"rtcports/internal/ports"
	"rtcports/internal/shared"
	"rtcports/internal/types"
)

// Endpoint is one participant of a connection. Port is nil when the owner
// of the participant could not be found; Path is then shared.UnknownEndpoint.
type Endpoint struct {
	Path string
	Port *Port
}

func (e Endpoint) Resolved() bool {
	return e.Port != nil
}

// Connection wraps one connector profile as seen from the port that
// reported it. Participants are resolved on first access.
type Connection struct {
	owner    *Port
	resolver ports.OwnerResolver

	mu         sync.Mutex
	id         string
	name       string
	properties *types.Properties
	raw        []ports.PortService
	endpoints  lazySlot[[]Endpoint]
	flights    singleflight.Group
}

func newConnection(profile ports.ConnectorProfile, owner *Port, resolver ports.OwnerResolver) *Connection {
	c := &Connection{owner: owner, resolver: resolver}
	c.apply(profile)
	return c
}

func (c *Connection) apply(profile ports.ConnectorProfile) {
	c.id = profile.ConnectorID
	c.name = profile.Name
	c.properties = DecodeProperties(profile.Properties)
	c.raw = append([]ports.PortService(nil), profile.Ports...)
}

func (c *Connection) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *Connection) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// Properties returns a copy of the negotiated connection properties.
func (c *Connection) Properties() *types.Properties {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.properties.Clone()
}

// Owner is the port this connection was read from, or nil.
func (c *Connection) Owner() *Port {
	return c.owner
}

// Ports returns the participants of the connection in profile order.
func (c *Connection) Ports(ctx context.Context) ([]Endpoint, error) {
	return loadSlot(ctx, &c.mu, &c.endpoints, &c.flights, "endpoints", c.resolve)
}

func (c *Connection) resolve(ctx context.Context) ([]Endpoint, error) {
	c.mu.Lock()
	raw := c.raw
	c.mu.Unlock()

	result := make([]Endpoint, 0, len(raw))
	for _, obj := range raw {
		if obj == nil {
			result = append(result, Endpoint{Path: shared.UnknownEndpoint})
			continue
		}
		if c.resolver == nil {
			port, err := ParsePort(ctx, obj, nil)
			if err != nil {
				return nil, err
			}
			result = append(result, Endpoint{Path: port.Name(), Port: port})
			continue
		}
		owner, found := c.resolver.FindOwner(ctx, obj)
		if !found {
			result = append(result, Endpoint{Path: shared.UnknownEndpoint})
			continue
		}
		port, err := ParsePort(ctx, obj, owner, WithResolver(c.resolver))
		if err != nil {
			return nil, err
		}
		result = append(result, Endpoint{
			Path: shared.JoinPortPath(owner.FullPathStr(), port.Name()),
			Port: port,
		})
	}
	return result, nil
}

// HasPort reports whether port is one of the resolved participants.
func (c *Connection) HasPort(ctx context.Context, port *Port) (bool, error) {
	if port == nil {
		return false, nil
	}
	endpoints, err := c.Ports(ctx)
	if err != nil {
		return false, err
	}
	for _, ep := range endpoints {
		if ep.Resolved() && ports.SameObject(ep.Port.Object(), port.Object()) {
			return true, nil
		}
	}
	return false, nil
}

// Disconnect removes the connection through the first participant whose
// owner is known.
func (c *Connection) Disconnect(ctx context.Context) error {
	endpoints, err := c.Ports(ctx)
	if err != nil {
		return err
	}
	id := c.ID()
	if len(endpoints) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("connection %s has no participants", id)).
			WithCause(ErrNotConnected)
	}
	for _, ep := range endpoints {
		if !ep.Resolved() {
			continue
		}
		code, err := ep.Port.Object().Disconnect(ctx, id)
		if err != nil {
			return remoteError("disconnect", err)
		}
		if code != types.ReturnOK {
			return disconnectFailed(id, code)
		}
		if c.owner != nil {
			c.owner.ReparseConnections()
		}
		log.Ctx(ctx).Debug().Str("connection", id).Str("via", ep.Path).Msg("connection removed")
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("no participant of connection %s has a known owner", id)).
		WithCause(ErrUnknownConnectionOwner)
}

// Reparse rereads id, name, properties and participants from profile and
// clears the resolved endpoints.
func (c *Connection) Reparse(profile ports.ConnectorProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(profile)
	c.endpoints.invalidate()
}

func (c *Connection) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	refs := make([]string, 0, len(c.raw))
	for _, obj := range c.raw {
		if obj == nil {
			refs = append(refs, shared.UnknownEndpoint)
			continue
		}
		refs = append(refs, obj.Ref())
	}
	return fmt.Sprintf("%s (%s) [%s]", c.name, c.id, strings.Join(refs, ", "))
}
