package app

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rtcports/internal/adapters"
	"rtcports/internal/ports"
	"rtcports/internal/types"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Config struct {
	Backend string
	Fixture string
	Redis   RedisConfig
}

type Service struct {
	FixtureLoader ports.FixturePort
	Fixture       types.Fixture
	Framework     ports.FrameworkPort
	Metrics       *Metrics
	// Tree is built from Fixture and Framework on first use when nil.
	Tree ports.TreePort
}

// NewService loads the fixture and opens the configured framework backend.
// The memory backend is seeded immediately; a Redis backend is expected to
// be seeded with Seed by whichever process runs first.
func NewService(ctx context.Context, cfg Config) (Service, error) {
	if cfg.Fixture == "" {
		return Service{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("fixture path is required")
	}
	service := Service{
		FixtureLoader: adapters.NewFixtureFileAdapter(),
		Metrics:       NewMetrics(),
	}
	fixture, err := service.FixtureLoader.LoadFixture(cfg.Fixture)
	if err != nil {
		return Service{}, err
	}
	service.Fixture = fixture
	switch cfg.Backend {
	case "", BackendMemory:
		framework := adapters.NewMemoryFramework()
		if _, err := adapters.SeedFixture(ctx, fixture, framework); err != nil {
			return Service{}, err
		}
		service.Framework = framework
	case BackendRedis:
		service.Framework = adapters.NewRedisFramework(
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.DB,
			adapters.WithRedisPrefix(cfg.Redis.Prefix),
		)
	default:
		return Service{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown backend: " + cfg.Backend)
	}
	return service, nil
}

func (s Service) Close() error {
	if s.Framework == nil {
		return nil
	}
	return s.Framework.Close()
}

func (s Service) tree(ctx context.Context) (ports.TreePort, error) {
	if s.Tree != nil {
		return s.Tree, nil
	}
	if s.Framework == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no framework backend configured")
	}
	return adapters.BuildTree(ctx, s.Fixture, s.Framework)
}
