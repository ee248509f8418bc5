package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"rtcports/internal/types"
)

func echo(polarity types.Polarity) types.InterfaceProfile {
	return types.InterfaceProfile{InstanceName: "echo", TypeName: "SimpleService::MyService", Polarity: polarity}
}

func newServicePair(t *testing.T, left []types.InterfaceProfile, right []types.InterfaceProfile) (*fakeFramework, *fakePort, *Port, *Port) {
	t.Helper()
	fw := newFakeFramework()
	leftObj := fw.addPort("ref-left", "Provider0.svc", serviceProfile()...)
	leftObj.setInterfaces(left...)
	rightObj := fw.addPort("ref-right", "Consumer0.svc", serviceProfile()...)
	rightObj.setInterfaces(right...)

	leftPort, err := ParsePort(t.Context(), leftObj, nil)
	require.NoError(t, err)
	rightPort, err := ParsePort(t.Context(), rightObj, nil)
	require.NoError(t, err)
	return fw, leftObj, leftPort, rightPort
}

func TestServicePortConnect(t *testing.T) {
	cases := []struct {
		name    string
		left    []types.InterfaceProfile
		right   []types.InterfaceProfile
		wantErr error
	}{
		{
			name:  "opposite polarity",
			left:  []types.InterfaceProfile{echo(types.PolarityProvided)},
			right: []types.InterfaceProfile{echo(types.PolarityRequired)},
		},
		{
			name:    "same polarity",
			left:    []types.InterfaceProfile{echo(types.PolarityProvided)},
			right:   []types.InterfaceProfile{echo(types.PolarityProvided)},
			wantErr: ErrMismatchedPolarity,
		},
		{
			name:    "missing instance",
			left:    []types.InterfaceProfile{echo(types.PolarityProvided)},
			right:   []types.InterfaceProfile{{InstanceName: "other", Polarity: types.PolarityRequired}},
			wantErr: ErrMismatchedInterfaces,
		},
		{
			name:    "destination without interfaces",
			left:    []types.InterfaceProfile{echo(types.PolarityProvided)},
			wantErr: ErrMismatchedInterfaces,
		},
		{
			name:    "source without interfaces",
			right:   []types.InterfaceProfile{echo(types.PolarityRequired)},
			wantErr: ErrMismatchedInterfaces,
		},
		{
			name: "neither has interfaces",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fw, leftObj, left, right := newServicePair(t, tc.left, tc.right)
			err := left.Connect(t.Context(), []*Port{right}, ConnectOptions{})
			if tc.wantErr != nil {
				require.True(t, errors.Is(err, tc.wantErr), "got %v", err)
				require.Equal(t, int32(0), leftObj.connectCalls.Load())
				return
			}
			require.NoError(t, err)
			stored, ok := fw.connectorByID("conn-1")
			require.True(t, ok)
			require.Equal(t, []types.NameValue{nv(types.PropPortType, "CorbaPort")}, stored.properties)
		})
	}
}

func TestServicePortRejectsDataDestination(t *testing.T) {
	fw, leftObj, left, _ := newServicePair(t, nil, nil)
	dataObj := fw.addPort("ref-data", "Sink0.in", dataInProfile()...)
	data, err := ParsePort(t.Context(), dataObj, nil)
	require.NoError(t, err)

	err = left.Connect(t.Context(), []*Port{data}, ConnectOptions{})
	require.True(t, errors.Is(err, ErrWrongPortType))
	require.Equal(t, int32(0), leftObj.connectCalls.Load())
}

func TestServicePortInterfacesSeededByParse(t *testing.T) {
	_, leftObj, left, _ := newServicePair(t, []types.InterfaceProfile{echo(types.PolarityProvided)}, nil)

	intf, err := left.InterfaceByName(t.Context(), "echo")
	require.NoError(t, err)
	require.NotNil(t, intf)
	require.Equal(t, "SimpleService::MyService", intf.TypeName())
	require.Equal(t, "Provided", intf.PolarityString())
	require.Equal(t, int32(1), leftObj.profileCalls.Load())

	missing, err := left.InterfaceByName(t.Context(), "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestServicePortReparseRefetchesInterfaces(t *testing.T) {
	_, leftObj, left, _ := newServicePair(t, []types.InterfaceProfile{echo(types.PolarityProvided)}, nil)

	leftObj.setInterfaces(echo(types.PolarityProvided), types.InterfaceProfile{InstanceName: "log", Polarity: types.PolarityRequired})
	intfs, err := left.Interfaces(t.Context())
	require.NoError(t, err)
	require.Len(t, intfs, 1)

	require.NoError(t, left.Reparse(t.Context()))
	intfs, err = left.Interfaces(t.Context())
	require.NoError(t, err)
	require.Len(t, intfs, 2)
	require.Equal(t, "Required", intfs[1].PolarityString())
	require.Equal(t, int32(3), leftObj.profileCalls.Load())
}

func TestInterfaceReparse(t *testing.T) {
	_, leftObj, left, _ := newServicePair(t, []types.InterfaceProfile{echo(types.PolarityProvided)}, nil)
	intf, err := left.InterfaceByName(t.Context(), "echo")
	require.NoError(t, err)

	leftObj.setInterfaces(echo(types.PolarityRequired))
	require.NoError(t, intf.Reparse(t.Context()))
	require.Equal(t, types.PolarityRequired, intf.Polarity())

	leftObj.setInterfaces()
	require.Error(t, intf.Reparse(t.Context()))
}

func TestDataPortHasNoInterfaces(t *testing.T) {
	ports := newDataPorts(t)
	intfs, err := ports.in.Interfaces(t.Context())
	require.NoError(t, err)
	require.Empty(t, intfs)
}
