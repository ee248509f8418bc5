package core

import (
	"context"

	assert "github.com/ZanzyTHEbar/assert-lib"

	"rtcports/internal/ports"
	"rtcports/internal/types"
)

// KindOf maps a port.port_type value to a port kind. Unknown and empty
// values map to the generic kind.
func KindOf(portType string) types.PortKind {
	switch types.PortKind(portType) {
	case types.PortKindDataIn, types.PortKindDataOut, types.PortKindService:
		return types.PortKind(portType)
	default:
		return types.PortKindGeneric
	}
}

// ParsePort fetches the profile of obj once and builds a port of the kind
// the profile declares. owner may be nil.
func ParsePort(ctx context.Context, obj ports.PortService, owner ports.TreeNode, opts ...PortOption) (*Port, error) {
	assert.NotNil(ctx, obj, "port reference must not be nil")
	profile, err := obj.GetPortProfile(ctx)
	if err != nil {
		return nil, remoteError("get port profile", err)
	}
	props := DecodeProperties(profile.Properties)
	p := newPort(obj, owner, KindOf(props.Value(types.PropPortType)), opts...)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyProfile(profile)
	if p.kind == types.PortKindService {
		p.interfaces.seed(interfacesFromProfile(obj, profile))
	}
	return p, nil
}
