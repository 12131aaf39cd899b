package core

import (
	"strings"
)

// Full is the release version of the tool, overridden at link time with
// -ldflags "-X i18nc-go/packages/i18nc/core.Full=..."
var Full = "0.1.0"

// Version represents a semantic version
type Version struct {
	Full  string
	Major string
	Minor string
	Patch string
}

// NewVersion creates a new Version from a full version string
func NewVersion(full string) *Version {
	full = strings.TrimPrefix(full, "v")
	parts := strings.Split(full, ".")
	v := &Version{Full: full}
	if len(parts) > 0 {
		v.Major = parts[0]
	}
	if len(parts) > 1 {
		v.Minor = parts[1]
	}
	if len(parts) > 2 {
		v.Patch = strings.Join(parts[2:], ".")
	}
	return v
}

// Current returns the version of the running binary
func Current() *Version {
	return NewVersion(Full)
}

// String renders the version with a leading "v"
func (v *Version) String() string {
	return "v" + v.Full
}
