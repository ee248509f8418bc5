package ports

import "rtcports/internal/types"

type FixturePort interface {
	LoadFixture(path string) (types.Fixture, error)
}
