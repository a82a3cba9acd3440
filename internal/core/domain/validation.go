package domain

import (
	"regexp"
)

// Validation Helpers

var macRegex = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)

// IsValidMAC checks if the string is a valid MAC address
func IsValidMAC(mac string) bool {
	return macRegex.MatchString(mac)
}

// IsValidName checks if a display name is acceptable for renaming.
// Empty strings and absurdly long names are rejected.
func IsValidName(name string) bool {
	return len(name) > 0 && len(name) <= 64
}
