package app

import (
	"context"

	"rtcports/internal/adapters"
)

// Seed registers the fixture's ports and connections with the framework.
// Anything already present is kept.
func (s Service) Seed(ctx context.Context) (SeedResult, error) {
	result, err := adapters.SeedFixture(ctx, s.Fixture, s.Framework)
	if err != nil {
		return SeedResult{}, err
	}
	return SeedResult{
		Registered: result.Registered,
		Existing:   result.Existing,
		Connected:  result.Connected,
		Skipped:    result.SkippedConn,
	}, nil
}
