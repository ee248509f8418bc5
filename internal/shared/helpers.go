// Package shared provides common helpers used across the rtcports packages.
package shared

import (
	"strings"
)

// UnknownEndpoint is the path recorded for a connection participant whose
// owning component is not in the tree.
const UnknownEndpoint = "Unknown"

// StripOwnerPrefix removes the "<instance>." prefix the framework puts in
// front of port names.
func StripOwnerPrefix(name string, instanceName string) string {
	if instanceName == "" {
		return name
	}
	return strings.TrimPrefix(name, instanceName+".")
}

// JoinPortPath builds "<component path>:<port name>".
func JoinPortPath(componentPath string, portName string) string {
	return componentPath + ":" + portName
}

// SplitPortPath splits "<component path>:<port name>". ok is false when
// either half is missing.
func SplitPortPath(path string) (componentPath string, portName string, ok bool) {
	idx := strings.LastIndex(path, ":")
	if idx <= 0 || idx == len(path)-1 {
		return "", "", false
	}
	return path[:idx], path[idx+1:], true
}

// InstanceNameFromNode drops the ".rtc" style suffix of a component node
// name, giving the name the framework prefixes ports with.
func InstanceNameFromNode(nodeName string) string {
	if idx := strings.LastIndex(nodeName, "."); idx > 0 {
		return nodeName[:idx]
	}
	return nodeName
}

// NormalizePath trims whitespace and repeated or trailing slashes.
func NormalizePath(path string) string {
	parts := strings.Split(strings.TrimSpace(path), "/")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return "/" + strings.Join(kept, "/")
}
