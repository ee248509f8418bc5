package core

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rtcports/internal/policies"
	"rtcports/internal/types"
)

// connectRule validates the destinations of a connect request for one port
// kind and fills in that kind's default properties. It runs before any
// remote mutation.
type connectRule func(ctx context.Context, src *Port, dests []*Port, props *types.Properties) error

func ruleFor(kind types.PortKind) connectRule {
	switch {
	case kind.IsData():
		return dataPortRule
	case kind == types.PortKindService:
		return servicePortRule
	default:
		return genericPortRule
	}
}

func genericPortRule(context.Context, *Port, []*Port, *types.Properties) error {
	return nil
}

// dataPortRule requires at least one destination of the opposite data
// direction.
func dataPortRule(_ context.Context, src *Port, dests []*Port, props *types.Properties) error {
	want := types.PortKindDataOut
	if src.Kind() == types.PortKindDataOut {
		want = types.PortKindDataIn
	}
	found := false
	for _, dest := range dests {
		if dest.Kind() == want {
			found = true
			break
		}
	}
	if !found {
		return wrongPortType(fmt.Sprintf("%s %s needs a %s destination", src.Kind(), src.Name(), want))
	}
	policies.ApplyDataPortDefaults(props, src.Properties().Value(types.PropDataType))
	return nil
}

// servicePortRule requires service destinations whose interfaces mirror the
// source's: same instance names, opposite polarity.
func servicePortRule(ctx context.Context, src *Port, dests []*Port, props *types.Properties) error {
	for _, dest := range dests {
		if dest.Kind() != types.PortKindService {
			return wrongPortType(fmt.Sprintf("service port %s cannot connect to %s %s", src.Name(), dest.Kind(), dest.Name()))
		}
	}
	own, err := src.Interfaces(ctx)
	if err != nil {
		return err
	}
	if len(own) == 0 {
		for _, dest := range dests {
			theirs, err := dest.Interfaces(ctx)
			if err != nil {
				return err
			}
			if len(theirs) > 0 {
				return mismatchedInterfaces(fmt.Sprintf("%s has no interfaces but %s has %d", src.Name(), dest.Name(), len(theirs)))
			}
		}
		policies.ApplyServicePortDefaults(props)
		return nil
	}

	for _, dest := range dests {
		theirs, err := dest.Interfaces(ctx)
		if err != nil {
			return err
		}
		if len(theirs) == 0 {
			return mismatchedInterfaces(fmt.Sprintf("%s has no interfaces", dest.Name()))
		}
	}
	for _, intf := range own {
		for _, dest := range dests {
			match, err := dest.InterfaceByName(ctx, intf.InstanceName())
			if err != nil {
				return err
			}
			if match == nil {
				return mismatchedInterfaces(fmt.Sprintf("%s has no interface %s", dest.Name(), intf.InstanceName()))
			}
			if match.Polarity() != intf.Polarity().Opposite() {
				return errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("interface %s is %s on both %s and %s", intf.InstanceName(), intf.PolarityString(), src.Name(), dest.Name())).
					WithCause(ErrMismatchedPolarity)
			}
		}
	}
	policies.ApplyServicePortDefaults(props)
	return nil
}

func wrongPortType(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg).
		WithCause(ErrWrongPortType)
}

func mismatchedInterfaces(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg).
		WithCause(ErrMismatchedInterfaces)
}
