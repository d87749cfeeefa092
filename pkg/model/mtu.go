package model

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidMTU reports an mtu attribute that is neither "auto" nor an
// unsigned number.
var ErrInvalidMTU = errors.New("invalid mtu value")

// MTU is an interface MTU attribute. The device reports either the
// literal "auto" or a numeric value; Auto distinguishes the two, and
// Value is meaningful only when Auto is false.
type MTU struct {
	Auto  bool
	Value uint16
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MTU) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "auto" {
		*m = MTU{Auto: true}
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMTU, s)
	}
	*m = MTU{Value: uint16(v)}
	return nil
}

// String renders the attribute in device syntax.
func (m MTU) String() string {
	if m.Auto {
		return "auto"
	}
	return strconv.FormatUint(uint64(m.Value), 10)
}
