package core

import "rtcports/internal/types"

// DecodeProperties converts a framework property list into an ordered
// mapping. A repeated name keeps its first position and its last value.
func DecodeProperties(list []types.NameValue) *types.Properties {
	return types.NewProperties(list...)
}

// EncodeProperties converts an ordered mapping into a framework property
// list in insertion order.
func EncodeProperties(props *types.Properties) []types.NameValue {
	return props.Pairs()
}
