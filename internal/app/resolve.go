package app

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rtcports/internal/core"
	"rtcports/internal/ports"
	"rtcports/internal/shared"
	"rtcports/internal/types"
)

func (s Service) findComponent(tree ports.TreePort, path string) (ports.PortOwner, error) {
	node, ok := tree.Find(path)
	if !ok {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no node at %s", path))
	}
	owner, ok := node.(ports.PortOwner)
	if !ok || node.Kind() != types.NodeKindComponent {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("%s is not a component", path))
	}
	return owner, nil
}

func (s Service) parse(ctx context.Context, obj ports.PortService, owner ports.TreeNode) (*core.Port, error) {
	s.Metrics.observeParse()
	return core.ParsePort(ctx, obj, owner)
}

// resolvePort finds the port at "<component path>:<port name>".
func (s Service) resolvePort(ctx context.Context, tree ports.TreePort, path string) (*core.Port, error) {
	componentPath, portName, ok := shared.SplitPortPath(path)
	if !ok {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("port path must look like /dir/component.rtc:port, got %q", path))
	}
	owner, err := s.findComponent(tree, componentPath)
	if err != nil {
		return nil, err
	}
	for _, obj := range owner.PortObjects() {
		port, err := s.parse(ctx, obj, owner)
		if err != nil {
			return nil, err
		}
		if port.Name() == portName {
			return port, nil
		}
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("component %s has no port %s", componentPath, portName))
}

func portPath(port *core.Port) string {
	if port.Owner() == nil {
		return port.Name()
	}
	return shared.JoinPortPath(port.Owner().FullPathStr(), port.Name())
}
