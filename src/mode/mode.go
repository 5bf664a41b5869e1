package mode

import (
	"fmt"
	"strings"
)

// Mode selects the overlay behaviour for one session.
type Mode int

const (
	Clip Mode = iota
	Caption
	Transparent
)

// All lists the modes in launcher order.
var All = []Mode{Clip, Caption, Transparent}

func (m Mode) String() string {
	switch m {
	case Clip:
		return "clip"
	case Caption:
		return "caption"
	case Transparent:
		return "transparent"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Title is the human readable label used in menus and window titles.
func (m Mode) Title() string {
	switch m {
	case Clip:
		return "Clip"
	case Caption:
		return "Caption"
	case Transparent:
		return "Transparent guide"
	default:
		return m.String()
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m >= Clip && m <= Transparent
}

// Parse accepts the String form (case-insensitive) plus a few short aliases.
func Parse(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "clip", "region":
		return Clip, nil
	case "caption", "text":
		return Caption, nil
	case "transparent", "trans", "guide":
		return Transparent, nil
	default:
		return Clip, fmt.Errorf("unknown mode %q", value)
	}
}
