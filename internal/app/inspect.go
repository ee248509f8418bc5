package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"golang.org/x/sync/errgroup"

	"rtcports/internal/core"
)

// ListPorts summarizes every port of one component. Ports are parsed in
// parallel and returned in the component's order.
func (s Service) ListPorts(ctx context.Context, req ListPortsRequest) (ListPortsResult, error) {
	path := strings.TrimSpace(req.ComponentPath)
	if path == "" {
		return ListPortsResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("component path is required")
	}
	tree, err := s.tree(ctx)
	if err != nil {
		return ListPortsResult{}, err
	}
	owner, err := s.findComponent(tree, path)
	if err != nil {
		return ListPortsResult{}, err
	}
	objs := owner.PortObjects()
	summaries := make([]PortSummary, len(objs))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, obj := range objs {
		group.Go(func() error {
			port, err := s.parse(groupCtx, obj, owner)
			if err != nil {
				return err
			}
			summary, err := summarizePort(groupCtx, port)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return ListPortsResult{}, err
	}
	return ListPortsResult{ComponentPath: owner.FullPathStr(), Ports: summaries}, nil
}

func summarizePort(ctx context.Context, port *core.Port) (PortSummary, error) {
	connected, err := port.IsConnected(ctx)
	if err != nil {
		return PortSummary{}, err
	}
	return PortSummary{
		Name:       port.Name(),
		Path:       portPath(port),
		Kind:       port.Kind(),
		Properties: core.EncodeProperties(port.Properties()),
		Connected:  connected,
	}, nil
}

func (s Service) InspectPort(ctx context.Context, req InspectPortRequest) (InspectPortResult, error) {
	tree, err := s.tree(ctx)
	if err != nil {
		return InspectPortResult{}, err
	}
	port, err := s.resolvePort(ctx, tree, strings.TrimSpace(req.PortPath))
	if err != nil {
		return InspectPortResult{}, err
	}
	summary, err := summarizePort(ctx, port)
	if err != nil {
		return InspectPortResult{}, err
	}
	intfs, err := port.Interfaces(ctx)
	if err != nil {
		return InspectPortResult{}, err
	}
	result := InspectPortResult{Port: summary}
	for _, intf := range intfs {
		result.Interfaces = append(result.Interfaces, InterfaceSummary{
			InstanceName: intf.InstanceName(),
			TypeName:     intf.TypeName(),
			Polarity:     intf.PolarityString(),
		})
	}
	conns, err := port.Connections(ctx)
	if err != nil {
		return InspectPortResult{}, err
	}
	for _, conn := range conns {
		connSummary, err := summarizeConnection(ctx, conn)
		if err != nil {
			return InspectPortResult{}, err
		}
		result.Connections = append(result.Connections, connSummary)
	}
	return result, nil
}

func summarizeConnection(ctx context.Context, conn *core.Connection) (ConnectionSummary, error) {
	endpoints, err := conn.Ports(ctx)
	if err != nil {
		return ConnectionSummary{}, err
	}
	paths := make([]string, 0, len(endpoints))
	for _, ep := range endpoints {
		paths = append(paths, ep.Path)
	}
	return ConnectionSummary{
		ID:         conn.ID(),
		Name:       conn.Name(),
		Properties: core.EncodeProperties(conn.Properties()),
		Endpoints:  paths,
	}, nil
}
