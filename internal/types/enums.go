package types

// PortKind is the variant tag carried by every port. The values match the
// port.port_type property advertised by the framework.
type PortKind string

const (
	PortKindGeneric PortKind = "Port"
	PortKindDataIn  PortKind = "DataInPort"
	PortKindDataOut PortKind = "DataOutPort"
	PortKindService PortKind = "CorbaPort"
)

// IsData reports whether the kind carries data (in or out).
func (k PortKind) IsData() bool {
	return k == PortKindDataIn || k == PortKindDataOut
}

type Polarity string

const (
	PolarityProvided Polarity = "provided"
	PolarityRequired Polarity = "required"
)

// Opposite returns the polarity a matching interface must have.
func (p Polarity) Opposite() Polarity {
	if p == PolarityProvided {
		return PolarityRequired
	}
	return PolarityProvided
}

// ReturnCode is the status the framework reports for connect and
// disconnect requests.
type ReturnCode int

const (
	ReturnOK                 ReturnCode = 0
	ReturnError              ReturnCode = 1
	ReturnBadParameter       ReturnCode = 2
	ReturnUnsupported        ReturnCode = 3
	ReturnOutOfResources     ReturnCode = 4
	ReturnPreconditionNotMet ReturnCode = 5
)

func (c ReturnCode) String() string {
	switch c {
	case ReturnOK:
		return "RTC_OK"
	case ReturnError:
		return "RTC_ERROR"
	case ReturnBadParameter:
		return "BAD_PARAMETER"
	case ReturnUnsupported:
		return "UNSUPPORTED"
	case ReturnOutOfResources:
		return "OUT_OF_RESOURCES"
	case ReturnPreconditionNotMet:
		return "PRECONDITION_NOT_MET"
	default:
		return "UNKNOWN"
	}
}

type NodeKind string

const (
	NodeKindDirectory NodeKind = "directory"
	NodeKindManager   NodeKind = "manager"
	NodeKindComponent NodeKind = "component"
)

// Negotiable property keys.
const (
	PropDataflowType     = "dataport.dataflow_type"
	PropInterfaceType    = "dataport.interface_type"
	PropSubscriptionType = "dataport.subscription_type"
	PropDataType         = "dataport.data_type"
	PropPortType         = "port.port_type"
)
