package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rtcports/internal/app"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <port-path>",
		Short: "Show a port's properties, interfaces and connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, service app.Service) error {
				result, err := service.InspectPort(ctx, app.InspectPortRequest{PortPath: args[0]})
				if err != nil {
					return err
				}
				printInspect(result)
				return nil
			})
		},
	}
}

func newConnectionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connections <port-path>",
		Short: "List the connections of a port",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, service app.Service) error {
				result, err := service.InspectPort(ctx, app.InspectPortRequest{PortPath: args[0]})
				if err != nil {
					return err
				}
				if len(result.Connections) == 0 {
					fmt.Println("no connections")
				}
				for _, conn := range result.Connections {
					printConnection(conn)
				}
				return nil
			})
		},
	}
}

func printInspect(result app.InspectPortResult) {
	port := result.Port
	fmt.Printf("%s (%s)\n", port.Path, port.Kind)
	fmt.Println("properties:")
	for _, prop := range port.Properties {
		fmt.Printf("  %s: %s\n", prop.Name, prop.Value)
	}
	if len(result.Interfaces) > 0 {
		fmt.Println("interfaces:")
		for _, intf := range result.Interfaces {
			fmt.Printf("  %s %s (%s)\n", intf.Polarity, intf.InstanceName, intf.TypeName)
		}
	}
	fmt.Printf("connections: %d\n", len(result.Connections))
	for _, conn := range result.Connections {
		printConnection(conn)
	}
}

func printConnection(conn app.ConnectionSummary) {
	fmt.Printf("- %s [%s]\n", conn.Name, conn.ID)
	fmt.Printf("  ports: %s\n", strings.Join(conn.Endpoints, ", "))
	for _, prop := range conn.Properties {
		fmt.Printf("  %s: %s\n", prop.Name, prop.Value)
	}
}
