package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rtcports/internal/app"
	"rtcports/internal/types"
)

type connectOptions struct {
	Name       string
	ID         string
	Properties []string
}

func newConnectCommand() *cobra.Command {
	opts := connectOptions{}
	cmd := &cobra.Command{
		Use:   "connect <source-port> <destination-port>...",
		Short: "Connect a port to one or more destination ports",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, service app.Service) error {
				return runConnect(ctx, cmd, service, args, opts)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "Connection name (defaults to the port names joined with _)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "Connection id (assigned by the framework when empty)")
	cmd.Flags().StringArrayVar(&opts.Properties, "property", nil, "Connection property as key=value (repeatable)")
	_ = viper.BindPFlag("connect.name", cmd.Flags().Lookup("name"))
	return cmd
}

func runConnect(ctx context.Context, cmd *cobra.Command, service app.Service, args []string, opts connectOptions) error {
	props, err := parseProperties(opts.Properties)
	if err != nil {
		return err
	}
	result, err := service.Connect(ctx, app.ConnectRequest{
		Source:       args[0],
		Destinations: args[1:],
		Name:         resolveString(cmd, opts.Name, "connect.name", "name"),
		ID:           opts.ID,
		Properties:   props,
	})
	if err != nil {
		return err
	}
	fmt.Printf("connected: %s [%s]\n", result.Connection.Name, result.Connection.ID)
	fmt.Printf("  ports: %s\n", strings.Join(result.Connection.Endpoints, ", "))
	return nil
}

// parseProperties reads key=value pairs in order. A value may contain "=".
func parseProperties(raw []string) ([]types.NameValue, error) {
	props := make([]types.NameValue, 0, len(raw))
	for _, entry := range raw {
		key, value, ok := strings.Cut(entry, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("property must be key=value, got %q", entry))
		}
		props = append(props, types.NameValue{Name: key, Value: strings.TrimSpace(value)})
	}
	return props, nil
}

type disconnectOptions struct {
	ID string
}

func newDisconnectCommand() *cobra.Command {
	opts := disconnectOptions{}
	cmd := &cobra.Command{
		Use:   "disconnect <port-path>",
		Short: "Disconnect one connection of a port, or all of them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, service app.Service) error {
				result, err := service.Disconnect(ctx, app.DisconnectRequest{PortPath: args[0], ConnectionID: opts.ID})
				if err != nil {
					return err
				}
				fmt.Printf("disconnected: %d\n", result.Removed)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&opts.ID, "id", "", "Connection id (all connections when empty)")
	return cmd
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Register the fixture's ports and connections with the framework",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(ctx context.Context, service app.Service) error {
				result, err := service.Seed(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("ports registered: %d (already present: %d)\n", result.Registered, result.Existing)
				fmt.Printf("connections created: %d (already present: %d)\n", result.Connected, result.Skipped)
				return nil
			})
		},
	}
}
