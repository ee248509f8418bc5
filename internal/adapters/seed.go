package adapters

import (
	"context"
	"fmt"
	"slices"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rtcports/internal/ports"
	"rtcports/internal/types"
)

type SeedResult struct {
	Registered  int
	Existing    int
	Connected   int
	SkippedConn int
}

// SeedFixture registers every fixture port with framework and establishes
// the fixture's connections. Ports and connections that already exist are
// left as they are, so seeding twice is harmless.
func SeedFixture(ctx context.Context, fixture types.Fixture, framework ports.FrameworkPort) (SeedResult, error) {
	var result SeedResult
	for _, entry := range fixturePorts(fixture) {
		created, err := framework.Register(ctx, entry.path, portProfile(entry))
		if err != nil {
			return result, err
		}
		if created {
			result.Registered++
		} else {
			result.Existing++
		}
	}
	for _, conn := range fixture.Connections {
		connected, err := seedConnection(ctx, conn, framework)
		if err != nil {
			return result, err
		}
		if connected {
			result.Connected++
		} else {
			result.SkippedConn++
		}
	}
	log.Ctx(ctx).Debug().
		Int("registered", result.Registered).
		Int("existing", result.Existing).
		Int("connected", result.Connected).
		Msg("fixture seeded")
	return result, nil
}

func seedConnection(ctx context.Context, conn types.FixtureConnection, framework ports.FrameworkPort) (bool, error) {
	objs := make([]ports.PortService, 0, len(conn.Ports))
	for _, path := range conn.Ports {
		obj, err := framework.Object(ctx, path)
		if err != nil {
			return false, err
		}
		objs = append(objs, obj)
	}
	existing, err := objs[0].GetConnectorProfiles(ctx)
	if err != nil {
		return false, err
	}
	for _, profile := range existing {
		if seededAlready(conn, objs, profile) {
			return false, nil
		}
	}
	code, _, err := objs[0].Connect(ctx, ports.ConnectorProfile{
		Name:        conn.Name,
		ConnectorID: conn.ID,
		Ports:       objs,
		Properties:  conn.Properties.Pairs(),
	})
	if err != nil {
		return false, err
	}
	if code != types.ReturnOK {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("fixture connection %q rejected: %s", conn.Name, code))
	}
	return true, nil
}

// seededAlready matches by id, then by name. A connection with neither
// matches a connector joining the same ports with the same properties.
func seededAlready(conn types.FixtureConnection, objs []ports.PortService, profile ports.ConnectorProfile) bool {
	switch {
	case conn.ID != "":
		return profile.ConnectorID == conn.ID
	case conn.Name != "":
		return profile.Name == conn.Name
	}
	if len(profile.Ports) != len(objs) {
		return false
	}
	for _, obj := range objs {
		if !slices.ContainsFunc(profile.Ports, func(other ports.PortService) bool {
			return ports.SameObject(obj, other)
		}) {
			return false
		}
	}
	return types.NewProperties(profile.Properties...).Equal(conn.Properties)
}
