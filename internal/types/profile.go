package types

// PortProfile is the attribute record the framework returns for a port.
type PortProfile struct {
	Name       string             `json:"name"`
	Interfaces []InterfaceProfile `json:"interfaces,omitempty"`
	Properties []NameValue        `json:"properties"`
}

// InterfaceProfile describes one service interface of a port.
type InterfaceProfile struct {
	InstanceName string   `json:"instance_name" yaml:"instance_name"`
	TypeName     string   `json:"type_name"     yaml:"type_name"`
	Polarity     Polarity `json:"polarity"      yaml:"polarity"`
}
