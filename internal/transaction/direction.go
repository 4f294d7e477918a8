package transaction

import (
	"fmt"
	"strings"
)

// Direction selects which side of a transfer the queried address is matched against.
type Direction string

const (
	// DirectionIn matches transfers received by the address.
	DirectionIn Direction = "in"
	// DirectionOut matches transfers sent by the address.
	DirectionOut Direction = "out"
)

const (
	labelTo   = "to"
	labelFrom = "from"
)

// ParseDirection parses "in" or "out", ignoring case and surrounding whitespace.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionIn:
		return DirectionIn, nil
	case DirectionOut:
		return DirectionOut, nil
	default:
		return "", &ValidationError{Field: "direction", Value: s, Reason: "must be 'in' or 'out'"}
	}
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == DirectionIn {
		return DirectionOut
	}

	return DirectionIn
}

// Preposition returns the label that reads naturally before the queried address,
// e.g. "transfers from 0x..." for outbound and "transfers to 0x..." for inbound.
func (d Direction) Preposition() string {
	if d == DirectionIn {
		return labelTo
	}

	return labelFrom
}

func (d Direction) valid() bool {
	return d == DirectionIn || d == DirectionOut
}

func (d Direction) String() string {
	return string(d)
}

// Set implements flag.Value-style parsing so a Direction can be filled from a CLI argument.
func (d *Direction) Set(s string) error {
	parsed, err := ParseDirection(s)
	if err != nil {
		return fmt.Errorf("failed to parse direction: %w", err)
	}

	*d = parsed

	return nil
}
