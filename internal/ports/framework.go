package ports

import (
	"context"

	"rtcports/internal/types"
)

// PortService is a live reference to a port held by the remote framework.
// Every call may block on the network.
type PortService interface {
	// Ref is the stable object reference of the remote port. Two
	// PortService values with equal refs denote the same remote port.
	Ref() string
	GetPortProfile(ctx context.Context) (types.PortProfile, error)
	GetConnectorProfiles(ctx context.Context) ([]ConnectorProfile, error)
	Connect(ctx context.Context, profile ConnectorProfile) (types.ReturnCode, ConnectorProfile, error)
	Disconnect(ctx context.Context, connectorID string) (types.ReturnCode, error)
}

// ConnectorProfile describes a connection as the framework sees it.
type ConnectorProfile struct {
	Name        string
	ConnectorID string
	Ports       []PortService
	Properties  []types.NameValue
}

// SameObject reports whether a and b refer to the same remote port.
func SameObject(a PortService, b PortService) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Ref() == b.Ref()
}

// FrameworkPort gives access to the port references a framework backend
// hosts and lets fixtures register new ones.
type FrameworkPort interface {
	Object(ctx context.Context, ref string) (PortService, error)
	// Register stores profile under ref. It reports false when ref was
	// already registered, in which case the existing profile is kept.
	Register(ctx context.Context, ref string, profile types.PortProfile) (bool, error)
	Close() error
}
