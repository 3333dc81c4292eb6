// Package changecode classifies quarterly financial series into symbolic
// change codes and derives streak counts and co-movement scores from them.
//
// Every function in this package is pure: inputs are never mutated and
// results are freshly allocated, so independent series may be processed
// concurrently without synchronization.
package changecode

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ChangeCode is the symbolic classification of a quarter-over-quarter change.
// The integer values match the INTEGER[] columns of the results table.
type ChangeCode int8

const (
	LargeDown       ChangeCode = -1
	FlatOrSmallDown ChangeCode = 0
	Up              ChangeCode = 1
)

// String returns the wire name of the code.
func (c ChangeCode) String() string {
	switch c {
	case Up:
		return "up"
	case FlatOrSmallDown:
		return "flat"
	case LargeDown:
		return "large_down"
	default:
		return fmt.Sprintf("ChangeCode(%d)", int8(c))
	}
}

// Valid reports whether c is one of the three defined codes.
func (c ChangeCode) Valid() bool {
	return c == Up || c == FlatOrSmallDown || c == LargeDown
}

// Color returns the display color for a code that is not at index 0.
func (c ChangeCode) Color() Color {
	switch c {
	case Up:
		return Green
	case FlatOrSmallDown:
		return Orange
	default:
		return Red
	}
}

// ParseChangeCode parses the wire name produced by String.
func ParseChangeCode(s string) (ChangeCode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "flat":
		return FlatOrSmallDown, nil
	case "large_down":
		return LargeDown, nil
	}
	return 0, fmt.Errorf("%w: unknown change code %q", ErrInvalidArgument, s)
}

// MarshalJSON encodes the code by name.
func (c ChangeCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts either the name or the integer form.
func (c *ChangeCode) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, err := ParseChangeCode(name)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	var n int8
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: change code must be a string or integer", ErrInvalidArgument)
	}
	code := ChangeCode(n)
	if !code.Valid() {
		return fmt.Errorf("%w: change code %d out of range", ErrInvalidArgument, n)
	}
	*c = code
	return nil
}

// Ints converts codes into the integer form stored in PostgreSQL.
func Ints(codes []ChangeCode) []int32 {
	out := make([]int32, len(codes))
	for i, c := range codes {
		out[i] = int32(c)
	}
	return out
}

// FromInts is the inverse of Ints. Values outside [-1, 1] are rejected.
func FromInts(values []int32) ([]ChangeCode, error) {
	out := make([]ChangeCode, len(values))
	for i, v := range values {
		code := ChangeCode(v)
		if v < -1 || v > 1 {
			return nil, fmt.Errorf("%w: change code %d at index %d out of range", ErrInvalidArgument, v, i)
		}
		out[i] = code
	}
	return out, nil
}
