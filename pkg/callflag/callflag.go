// Package callflag defines the Neo N3 call-flag bitmask used by method
// tokens and manifest permissions, adapted from neo-go's
// pkg/smartcontract/callflag.
package callflag

import (
	"fmt"
	"strings"
)

// CallFlag is a bitmask restricting what a called contract is permitted to
// do.
type CallFlag byte

// NoneFlag grants no permissions.
const NoneFlag CallFlag = 0

// Individual call flags.
const (
	ReadStates CallFlag = 1 << iota
	WriteStates
	AllowCall
	AllowNotify
)

// Composite call flags.
const (
	States  = ReadStates | WriteStates
	ReadOnly = ReadStates | AllowCall
	All      = States | AllowCall | AllowNotify
)

var singleNames = []struct {
	flag CallFlag
	name string
}{
	{ReadStates, "ReadStates"},
	{WriteStates, "WriteStates"},
	{AllowCall, "AllowCall"},
	{AllowNotify, "AllowNotify"},
}

var groupNames = []struct {
	flag CallFlag
	name string
}{
	{ReadOnly, "ReadOnly"},
	{States, "States"},
}

// Has reports whether f contains every bit set in other.
func (f CallFlag) Has(other CallFlag) bool {
	return f&other == other
}

// String renders f using the largest matching named groups first
// (ReadOnly, then States), followed by any remaining individual bits, in
// declaration order, comma-separated.
func (f CallFlag) String() string {
	switch f {
	case NoneFlag:
		return "None"
	case All:
		return "All"
	}

	remaining := f
	var parts []string
	for _, g := range groupNames {
		if remaining.Has(g.flag) {
			parts = append(parts, g.name)
			remaining &^= g.flag
		}
	}
	for _, s := range singleNames {
		if remaining.Has(s.flag) {
			parts = append(parts, s.name)
			remaining &^= s.flag
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, ", ")
}

// FromString parses the comma-separated form produced by String, plus the
// bare individual/group names.
func FromString(s string) (CallFlag, error) {
	switch s {
	case "None":
		return NoneFlag, nil
	case "All":
		return All, nil
	}
	var result CallFlag
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		found := false
		for _, g := range groupNames {
			if g.name == name {
				result |= g.flag
				found = true
				break
			}
		}
		if found {
			continue
		}
		for _, sg := range singleNames {
			if sg.name == name {
				result |= sg.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("callflag: unknown flag name %q", name)
		}
	}
	return result, nil
}

// MarshalJSON renders the flag as its integer value, matching NEF/manifest
// JSON encoding.
func (f CallFlag) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%d", f)), nil
}

// UnmarshalJSON accepts the integer encoding.
func (f *CallFlag) UnmarshalJSON(data []byte) error {
	var v int
	if _, err := fmt.Sscanf(string(data), "%d", &v); err != nil {
		return err
	}
	*f = CallFlag(v)
	return nil
}
