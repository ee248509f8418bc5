package adapters

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"

	"rtcports/internal/ports"
	"rtcports/internal/types"
)

type connectorRecord struct {
	Name       string            `json:"name"`
	ID         string            `json:"id"`
	Ports      []string          `json:"ports"`
	Properties []types.NameValue `json:"properties"`
}

// MemoryFramework hosts port references inside the current process.
type MemoryFramework struct {
	mu         sync.RWMutex
	profiles   map[string]types.PortProfile
	connectors map[string]connectorRecord
	order      []string
}

func NewMemoryFramework() *MemoryFramework {
	return &MemoryFramework{
		profiles:   map[string]types.PortProfile{},
		connectors: map[string]connectorRecord{},
	}
}

func (f *MemoryFramework) Register(_ context.Context, ref string, profile types.PortProfile) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[ref]; ok {
		return false, nil
	}
	f.profiles[ref] = cloneProfile(profile)
	return true, nil
}

func (f *MemoryFramework) Object(_ context.Context, ref string) (ports.PortService, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if _, ok := f.profiles[ref]; !ok {
		return nil, unknownRef(ref)
	}
	return memoryPort{fw: f, ref: ref}, nil
}

func (f *MemoryFramework) Close() error {
	return nil
}

func unknownRef(ref string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("no port registered at %s", ref))
}

func cloneProfile(profile types.PortProfile) types.PortProfile {
	return types.PortProfile{
		Name:       profile.Name,
		Interfaces: slices.Clone(profile.Interfaces),
		Properties: slices.Clone(profile.Properties),
	}
}

type memoryPort struct {
	fw  *MemoryFramework
	ref string
}

func (p memoryPort) Ref() string {
	return p.ref
}

func (p memoryPort) GetPortProfile(context.Context) (types.PortProfile, error) {
	p.fw.mu.RLock()
	defer p.fw.mu.RUnlock()
	profile, ok := p.fw.profiles[p.ref]
	if !ok {
		return types.PortProfile{}, unknownRef(p.ref)
	}
	return cloneProfile(profile), nil
}

func (p memoryPort) GetConnectorProfiles(context.Context) ([]ports.ConnectorProfile, error) {
	p.fw.mu.RLock()
	defer p.fw.mu.RUnlock()
	result := []ports.ConnectorProfile{}
	for _, id := range p.fw.order {
		record := p.fw.connectors[id]
		if !slices.Contains(record.Ports, p.ref) {
			continue
		}
		result = append(result, p.fw.profileOf(record))
	}
	return result, nil
}

// profileOf converts a stored record. Callers hold f.mu.
func (f *MemoryFramework) profileOf(record connectorRecord) ports.ConnectorProfile {
	objs := make([]ports.PortService, 0, len(record.Ports))
	for _, ref := range record.Ports {
		objs = append(objs, memoryPort{fw: f, ref: ref})
	}
	return ports.ConnectorProfile{
		Name:        record.Name,
		ConnectorID: record.ID,
		Ports:       objs,
		Properties:  slices.Clone(record.Properties),
	}
}

func (p memoryPort) Connect(_ context.Context, profile ports.ConnectorProfile) (types.ReturnCode, ports.ConnectorProfile, error) {
	record, code := newConnectorRecord(profile)
	if code != types.ReturnOK {
		return code, profile, nil
	}
	p.fw.mu.Lock()
	defer p.fw.mu.Unlock()
	for _, ref := range record.Ports {
		if _, ok := p.fw.profiles[ref]; !ok {
			return types.ReturnBadParameter, profile, nil
		}
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if _, exists := p.fw.connectors[record.ID]; exists {
		return types.ReturnPreconditionNotMet, profile, nil
	}
	p.fw.connectors[record.ID] = record
	p.fw.order = append(p.fw.order, record.ID)
	return types.ReturnOK, p.fw.profileOf(record), nil
}

func (p memoryPort) Disconnect(_ context.Context, connectorID string) (types.ReturnCode, error) {
	p.fw.mu.Lock()
	defer p.fw.mu.Unlock()
	record, ok := p.fw.connectors[connectorID]
	if !ok || !slices.Contains(record.Ports, p.ref) {
		return types.ReturnBadParameter, nil
	}
	delete(p.fw.connectors, connectorID)
	p.fw.order = slices.DeleteFunc(p.fw.order, func(id string) bool { return id == connectorID })
	return types.ReturnOK, nil
}

// newConnectorRecord checks the shape of a connect request. A request needs
// at least two distinct participants.
func newConnectorRecord(profile ports.ConnectorProfile) (connectorRecord, types.ReturnCode) {
	refs := make([]string, 0, len(profile.Ports))
	for _, obj := range profile.Ports {
		if obj == nil {
			return connectorRecord{}, types.ReturnBadParameter
		}
		if slices.Contains(refs, obj.Ref()) {
			return connectorRecord{}, types.ReturnBadParameter
		}
		refs = append(refs, obj.Ref())
	}
	if len(refs) < 2 {
		return connectorRecord{}, types.ReturnBadParameter
	}
	return connectorRecord{
		Name:       profile.Name,
		ID:         profile.ConnectorID,
		Ports:      refs,
		Properties: slices.Clone(profile.Properties),
	}, types.ReturnOK
}
