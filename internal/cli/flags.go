package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rtcports/internal/app"
)

func newAppService(ctx context.Context) (app.Service, error) {
	return app.NewService(ctx, app.Config{
		Backend: viper.GetString("backend"),
		Fixture: viper.GetString("fixture"),
		Redis: app.RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			Prefix:   viper.GetString("redis.prefix"),
		},
	})
}

// withService runs fn against a freshly opened service, then prints the
// metrics when asked to and closes the service.
func withService(cmd *cobra.Command, fn func(ctx context.Context, service app.Service) error) error {
	ctx := cmd.Context()
	service, err := newAppService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()
	if err := fn(ctx, service); err != nil {
		return err
	}
	if viper.GetBool("metrics") {
		return service.Metrics.WriteText(os.Stdout)
	}
	return nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
