package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rtcports/internal/app"
)

type portsOptions struct {
	ConnectedOnly bool
}

func newPortsCommand() *cobra.Command {
	opts := portsOptions{}
	cmd := &cobra.Command{
		Use:   "ports <component-path>",
		Short: "List the ports of a component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, service app.Service) error {
				return runPorts(ctx, cmd, service, args[0], opts)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.ConnectedOnly, "connected-only", false, "Only list connected ports")
	_ = viper.BindPFlag("ports.connected_only", cmd.Flags().Lookup("connected-only"))
	return cmd
}

func runPorts(ctx context.Context, cmd *cobra.Command, service app.Service, path string, opts portsOptions) error {
	result, err := service.ListPorts(ctx, app.ListPortsRequest{ComponentPath: path})
	if err != nil {
		return err
	}
	connectedOnly := resolveBool(cmd, opts.ConnectedOnly, "ports.connected_only", "connected-only")
	fmt.Printf("%s:\n", result.ComponentPath)
	for _, port := range result.Ports {
		if connectedOnly && !port.Connected {
			continue
		}
		state := "disconnected"
		if port.Connected {
			state = "connected"
		}
		fmt.Printf("- %s (%s) %s\n", port.Name, port.Kind, state)
	}
	return nil
}
