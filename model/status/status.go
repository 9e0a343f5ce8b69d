package status

import (
	"fmt"
	"strings"
)

// Business represents the domain-level approval state of a process instance.
// It is distinct from the engine's own token state.
type Business string

const (
	Unknown     Business = ""
	Cancel      Business = "cancel"
	Draft       Business = "draft"
	Waiting     Business = "waiting"
	Finish      Business = "finish"
	Invalid     Business = "invalid"
	Back        Business = "back"
	Termination Business = "termination"
)

var names = map[Business]string{
	Cancel:      "Cancelled",
	Draft:       "Draft",
	Waiting:     "Under approval",
	Finish:      "Finished",
	Invalid:     "Invalidated",
	Back:        "Returned",
	Termination: "Terminated",
}

// Parse converts a stored status value, case-insensitively.
func Parse(value string) (Business, error) {
	candidate := Business(strings.ToLower(strings.TrimSpace(value)))
	if candidate == Unknown {
		return Unknown, nil
	}
	if _, ok := names[candidate]; !ok {
		return Unknown, fmt.Errorf("unknown business status: %q", value)
	}
	return candidate, nil
}

func (b Business) String() string {
	return string(b)
}

// Name returns a display name; unknown statuses yield an empty string.
func (b Business) Name() string {
	return names[b]
}

// IsTerminal reports whether no further task action may run for the instance.
func (b Business) IsTerminal() bool {
	switch b {
	case Finish, Termination, Invalid:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (b Business) MarshalText() ([]byte, error) {
	return []byte(b), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Business) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
