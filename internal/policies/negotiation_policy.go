package policies

import (
	"strings"

	"rtcports/internal/types"
)

const wildcardAny = "any"

// Defaults applied to data port connections when the caller leaves them out.
const (
	DefaultDataflowType     = "push"
	DefaultInterfaceType    = "corba_cdr"
	DefaultSubscriptionType = "new"
)

// Violation records a requested property value that an endpoint does not
// advertise.
type Violation struct {
	Key       string
	Requested string
	Allowed   string
}

// Allows reports whether value is one of the comma-separated entries of
// allowed. An "any" entry, in any case, allows every value.
func Allows(allowed string, value string) bool {
	for _, candidate := range strings.Split(allowed, ",") {
		candidate = strings.TrimSpace(candidate)
		if strings.EqualFold(candidate, wildcardAny) || candidate == value {
			return true
		}
	}
	return false
}

// FindViolation checks every requested key against each advertised property
// set in order. Keys an endpoint does not advertise are not constrained by
// it.
func FindViolation(requested *types.Properties, advertised ...*types.Properties) (Violation, bool) {
	for _, pair := range requested.Pairs() {
		for _, props := range advertised {
			allowed, ok := props.Get(pair.Name)
			if !ok {
				continue
			}
			if !Allows(allowed, pair.Value) {
				return Violation{Key: pair.Name, Requested: pair.Value, Allowed: allowed}, true
			}
		}
	}
	return Violation{}, false
}

// ApplyDataPortDefaults fills the data port negotiation keys the caller did
// not set. dataType is the source port's own data type; it is skipped when
// empty.
func ApplyDataPortDefaults(props *types.Properties, dataType string) {
	props.SetDefault(types.PropDataflowType, DefaultDataflowType)
	props.SetDefault(types.PropInterfaceType, DefaultInterfaceType)
	props.SetDefault(types.PropSubscriptionType, DefaultSubscriptionType)
	if dataType != "" {
		props.SetDefault(types.PropDataType, dataType)
	}
}

func ApplyServicePortDefaults(props *types.Properties) {
	props.SetDefault(types.PropPortType, string(types.PortKindService))
}
