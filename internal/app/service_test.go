package app

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtcports/internal/core"
	"rtcports/internal/types"
)

const (
	fixturePath  = "../../fixtures/localhost.yaml"
	outPath      = "/localhost/ConsoleIn0.rtc:out"
	inPath       = "/localhost/ConsoleOut0.rtc:in"
	providerPath = "/localhost/manager.mgr/MyServiceProvider0.rtc:MyService"
	consumerPath = "/localhost/manager.mgr/MyServiceConsumer0.rtc:MyService"
)

func newMemoryService(t *testing.T) Service {
	t.Helper()
	service, err := NewService(t.Context(), Config{Backend: BackendMemory, Fixture: fixturePath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = service.Close() })
	return service
}

func TestListPorts(t *testing.T) {
	service := newMemoryService(t)

	result, err := service.ListPorts(t.Context(), ListPortsRequest{ComponentPath: "/localhost/ConsoleIn0.rtc"})
	require.NoError(t, err)
	require.Len(t, result.Ports, 1)
	port := result.Ports[0]
	assert.Equal(t, "out", port.Name)
	assert.Equal(t, outPath, port.Path)
	assert.Equal(t, types.PortKindDataOut, port.Kind)
	assert.True(t, port.Connected)
	assert.Equal(t, types.NameValue{Name: types.PropPortType, Value: "DataOutPort"}, port.Properties[0])

	_, err = service.ListPorts(t.Context(), ListPortsRequest{ComponentPath: "/localhost/Nope0.rtc"})
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	_, err = service.ListPorts(t.Context(), ListPortsRequest{})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestInspectPort(t *testing.T) {
	service := newMemoryService(t)

	result, err := service.InspectPort(t.Context(), InspectPortRequest{PortPath: inPath})
	require.NoError(t, err)
	assert.Equal(t, types.PortKindDataIn, result.Port.Kind)
	assert.Empty(t, result.Interfaces)
	require.Len(t, result.Connections, 1)
	conn := result.Connections[0]
	assert.Equal(t, "console-link", conn.ID)
	if diff := cmp.Diff([]string{outPath, inPath}, conn.Endpoints); diff != "" {
		t.Fatalf("unexpected endpoints (-want +got):\n%s", diff)
	}

	provider, err := service.InspectPort(t.Context(), InspectPortRequest{PortPath: providerPath})
	require.NoError(t, err)
	want := []InterfaceSummary{{InstanceName: "myservice0", TypeName: "SimpleService::MyService", Polarity: "Provided"}}
	if diff := cmp.Diff(want, provider.Interfaces); diff != "" {
		t.Fatalf("unexpected interfaces (-want +got):\n%s", diff)
	}
	assert.False(t, provider.Port.Connected)
}

func TestInspectPortPathErrors(t *testing.T) {
	service := newMemoryService(t)

	_, err := service.InspectPort(t.Context(), InspectPortRequest{PortPath: "/localhost/ConsoleIn0.rtc"})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	_, err = service.InspectPort(t.Context(), InspectPortRequest{PortPath: "/localhost/ConsoleIn0.rtc:missing"})
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	_, err = service.InspectPort(t.Context(), InspectPortRequest{PortPath: "/localhost/manager.mgr:x"})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestConnectServicePorts(t *testing.T) {
	service := newMemoryService(t)

	result, err := service.Connect(t.Context(), ConnectRequest{
		Source:       providerPath,
		Destinations: []string{consumerPath},
		ID:           "svc-link",
	})
	require.NoError(t, err)
	assert.Equal(t, "svc-link", result.Connection.ID)
	assert.Equal(t, "MyService_MyService", result.Connection.Name)
	assert.Equal(t, []string{providerPath, consumerPath}, result.Connection.Endpoints)
	assert.Equal(t, []types.NameValue{{Name: types.PropPortType, Value: "CorbaPort"}}, result.Connection.Properties)

	assert.Equal(t, 1.0, testutil.ToFloat64(service.Metrics.connects.WithLabelValues("CorbaPort", resultOK)))

	inspected, err := service.InspectPort(t.Context(), InspectPortRequest{PortPath: consumerPath})
	require.NoError(t, err)
	assert.True(t, inspected.Port.Connected)
}

func TestConnectDataPortsWithoutID(t *testing.T) {
	service := newMemoryService(t)

	result, err := service.Connect(t.Context(), ConnectRequest{
		Source:       inPath,
		Destinations: []string{outPath},
		Name:         "second",
		Properties:   []types.NameValue{{Name: types.PropSubscriptionType, Value: "flush"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "second", result.Connection.Name)
	assert.NotEmpty(t, result.Connection.ID)
	assert.Equal(t, types.NameValue{Name: types.PropSubscriptionType, Value: "flush"}, result.Connection.Properties[0])
}

func TestConnectRejectsWrongType(t *testing.T) {
	service := newMemoryService(t)

	_, err := service.Connect(t.Context(), ConnectRequest{Source: outPath, Destinations: []string{providerPath}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrWrongPortType))
	assert.Equal(t, 1.0, testutil.ToFloat64(service.Metrics.connects.WithLabelValues("DataOutPort", resultError)))

	_, err = service.Connect(t.Context(), ConnectRequest{Source: outPath})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestDisconnect(t *testing.T) {
	service := newMemoryService(t)

	_, err := service.Disconnect(t.Context(), DisconnectRequest{PortPath: outPath, ConnectionID: "nope"})
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))

	result, err := service.Disconnect(t.Context(), DisconnectRequest{PortPath: outPath, ConnectionID: "console-link"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Removed)

	listed, err := service.ListPorts(t.Context(), ListPortsRequest{ComponentPath: "/localhost/ConsoleOut0.rtc"})
	require.NoError(t, err)
	assert.False(t, listed.Ports[0].Connected)
	assert.Equal(t, 1.0, testutil.ToFloat64(service.Metrics.disconnects.WithLabelValues(resultOK)))
}

func TestDisconnectAll(t *testing.T) {
	service := newMemoryService(t)
	_, err := service.Connect(t.Context(), ConnectRequest{Source: outPath, Destinations: []string{inPath}})
	require.NoError(t, err)

	result, err := service.Disconnect(t.Context(), DisconnectRequest{PortPath: inPath})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Removed)

	inspected, err := service.InspectPort(t.Context(), InspectPortRequest{PortPath: outPath})
	require.NoError(t, err)
	assert.Empty(t, inspected.Connections)
}

func TestRedisBackendSeed(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := Config{Backend: BackendRedis, Fixture: fixturePath, Redis: RedisConfig{Addr: mr.Addr(), Prefix: "seed-test:"}}
	first, err := NewService(t.Context(), cfg)
	require.NoError(t, err)
	defer first.Close()

	_, err = first.ListPorts(t.Context(), ListPortsRequest{ComponentPath: "/localhost/ConsoleIn0.rtc"})
	require.Error(t, err)

	seeded, err := first.Seed(t.Context())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Registered: 4, Connected: 1}, seeded)

	second, err := NewService(t.Context(), cfg)
	require.NoError(t, err)
	defer second.Close()
	again, err := second.Seed(t.Context())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Existing: 4, Skipped: 1}, again)

	_, err = second.Connect(t.Context(), ConnectRequest{Source: providerPath, Destinations: []string{consumerPath}, ID: "shared"})
	require.NoError(t, err)
	inspected, err := first.InspectPort(t.Context(), InspectPortRequest{PortPath: consumerPath})
	require.NoError(t, err)
	require.Len(t, inspected.Connections, 1)
	assert.Equal(t, "shared", inspected.Connections[0].ID)
}

func TestNewServiceConfigErrors(t *testing.T) {
	_, err := NewService(t.Context(), Config{Backend: "carrier-pigeon", Fixture: fixturePath})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	_, err = NewService(t.Context(), Config{})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestMetricsWriteText(t *testing.T) {
	service := newMemoryService(t)
	_, err := service.ListPorts(t.Context(), ListPortsRequest{ComponentPath: "/localhost/ConsoleIn0.rtc"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, service.Metrics.WriteText(&buf))
	assert.Contains(t, buf.String(), "rtcports_port_parse_total 1")

	var nilMetrics *Metrics
	nilMetrics.observeParse()
	require.NoError(t, nilMetrics.WriteText(&buf))
}
