package fixedmath

import (
	"fmt"
	"strings"
)

// Rounding selects what happens to the remainder of an inexact division.
type Rounding uint8

const (
	RoundDown Rounding = iota // toward zero
	RoundUp                   // away from zero
)

func (r Rounding) String() string {
	switch r {
	case RoundDown:
		return "down"
	case RoundUp:
		return "up"
	default:
		return fmt.Sprintf("Rounding(%d)", uint8(r))
	}
}

// Opposite returns the other rounding direction.
func (r Rounding) Opposite() Rounding {
	if r == RoundUp {
		return RoundDown
	}
	return RoundUp
}

// ParseRounding accepts "down" or "up" (case-insensitive).
func ParseRounding(s string) (Rounding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "down":
		return RoundDown, nil
	case "up":
		return RoundUp, nil
	default:
		return RoundDown, fmt.Errorf("invalid rounding %q (expected down|up)", s)
	}
}
