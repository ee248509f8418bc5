package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rtcports/internal/ports"
	"rtcports/internal/types"
)

// Interface is one service interface provided or required by a service
// port. Its fields change only through Reparse.
type Interface struct {
	obj ports.PortService

	mu           sync.Mutex
	instanceName string
	typeName     string
	polarity     types.Polarity
}

func newInterface(obj ports.PortService, profile types.InterfaceProfile) *Interface {
	intf := &Interface{obj: obj}
	intf.apply(profile)
	return intf
}

func (i *Interface) apply(profile types.InterfaceProfile) {
	i.instanceName = profile.InstanceName
	i.typeName = profile.TypeName
	if profile.Polarity == types.PolarityProvided {
		i.polarity = types.PolarityProvided
	} else {
		i.polarity = types.PolarityRequired
	}
}

func (i *Interface) InstanceName() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.instanceName
}

func (i *Interface) TypeName() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.typeName
}

func (i *Interface) Polarity() types.Polarity {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.polarity
}

// PolarityString returns "Provided" or "Required".
func (i *Interface) PolarityString() string {
	if i.Polarity() == types.PolarityProvided {
		return "Provided"
	}
	return "Required"
}

// Reparse refetches the owning port's profile and rereads this interface
// from it by instance name.
func (i *Interface) Reparse(ctx context.Context) error {
	profile, err := i.obj.GetPortProfile(ctx)
	if err != nil {
		return remoteError("get port profile", err)
	}
	name := i.InstanceName()
	for _, candidate := range profile.Interfaces {
		if candidate.InstanceName != name {
			continue
		}
		i.mu.Lock()
		i.apply(candidate)
		i.mu.Unlock()
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("interface no longer exposed: %s", name))
}
