package app

import "rtcports/internal/types"

type ListPortsRequest struct {
	ComponentPath string
}

type PortSummary struct {
	Name       string            `json:"name"`
	Path       string            `json:"path"`
	Kind       types.PortKind    `json:"kind"`
	Properties []types.NameValue `json:"properties"`
	Connected  bool              `json:"connected"`
}

type ListPortsResult struct {
	ComponentPath string
	Ports         []PortSummary
}

type InspectPortRequest struct {
	PortPath string
}

type InterfaceSummary struct {
	InstanceName string `json:"instance_name"`
	TypeName     string `json:"type_name"`
	Polarity     string `json:"polarity"`
}

type ConnectionSummary struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Properties []types.NameValue `json:"properties"`
	Endpoints  []string          `json:"endpoints"`
}

type InspectPortResult struct {
	Port        PortSummary
	Interfaces  []InterfaceSummary
	Connections []ConnectionSummary
}

type ConnectRequest struct {
	Source       string
	Destinations []string
	Name         string
	ID           string
	Properties   []types.NameValue
}

type ConnectResult struct {
	Connection ConnectionSummary
}

type DisconnectRequest struct {
	PortPath string
	// ConnectionID selects one connection; empty disconnects all of them.
	ConnectionID string
}

type DisconnectResult struct {
	Removed int
}

type SeedResult struct {
	Registered int
	Existing   int
	Connected  int
	Skipped    int
}
