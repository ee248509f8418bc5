package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "RTCPORTS"

type RootConfig struct {
	ConfigFile    string
	LogLevel      string
	Backend       string
	Fixture       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	Metrics       bool
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg(errorMessage(err))
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:           "rtcports",
		Short:         "Inspect and connect the ports of distributed components",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			cmd.SetContext(log.Logger.WithContext(cmd.Context()))
			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	flags.StringVar(&cfg.Backend, "backend", "memory", "Framework backend (memory or redis)")
	flags.StringVar(&cfg.Fixture, "fixture", "rtcports.fixture.yaml", "Component tree fixture")
	flags.StringVar(&cfg.RedisAddr, "redis-addr", "localhost:6379", "Redis address for the redis backend")
	flags.StringVar(&cfg.RedisPassword, "redis-password", "", "Redis password")
	flags.IntVar(&cfg.RedisDB, "redis-db", 0, "Redis database")
	flags.StringVar(&cfg.RedisPrefix, "redis-prefix", "rtcports:", "Key prefix for framework state in Redis")
	flags.BoolVar(&cfg.Metrics, "metrics", false, "Print metrics after the command")
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("backend", flags.Lookup("backend"))
	_ = viper.BindPFlag("fixture", flags.Lookup("fixture"))
	_ = viper.BindPFlag("redis.addr", flags.Lookup("redis-addr"))
	_ = viper.BindPFlag("redis.password", flags.Lookup("redis-password"))
	_ = viper.BindPFlag("redis.db", flags.Lookup("redis-db"))
	_ = viper.BindPFlag("redis.prefix", flags.Lookup("redis-prefix"))
	_ = viper.BindPFlag("metrics", flags.Lookup("metrics"))

	cmd.AddCommand(newPortsCommand())
	cmd.AddCommand(newInspectCommand())
	cmd.AddCommand(newConnectionsCommand())
	cmd.AddCommand(newConnectCommand())
	cmd.AddCommand(newDisconnectCommand())
	cmd.AddCommand(newSeedCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("rtcports")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/rtcports")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func exitCodeForError(err error) int {
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodeFailedPrecondition:
		return 3
	case errbuilder.CodeNotFound:
		return 4
	case errbuilder.CodeInternal, errbuilder.CodeUnavailable, errbuilder.CodeDataLoss:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
