package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration reports a duration attribute that does not follow
// the device's `<number><unit>` syntax.
var ErrInvalidDuration = errors.New("invalid duration value")

// Duration is a RouterOS time span such as "2w3d7h16m40s", decoded into
// a time.Duration. Supported units are w, d, h, m, s and ms.
type Duration time.Duration

var durationUnits = []struct {
	name string
	size time.Duration
}{
	{"w", 7 * 24 * time.Hour},
	{"d", 24 * time.Hour},
	{"h", time.Hour},
	{"m", time.Minute},
	{"s", time.Second},
	{"ms", time.Millisecond},
}

func durationUnit(name string) (time.Duration, bool) {
	for _, u := range durationUnits {
		if u.name == name {
			return u.size, true
		}
	}
	return 0, false
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		return fmt.Errorf("%w: empty string", ErrInvalidDuration)
	}
	var total time.Duration
	for i := 0; i < len(s); {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		n, err := strconv.ParseUint(s[start:i], 10, 63)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		start = i
		for i < len(s) && s[i] >= 'a' && s[i] <= 'z' {
			i++
		}
		size, ok := durationUnit(s[start:i])
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		total += time.Duration(n) * size
	}
	*d = Duration(total)
	return nil
}

// String renders the span in device syntax, largest unit first with
// zero-valued units skipped, or "0s" for a zero span.
func (d Duration) String() string {
	rem := time.Duration(d)
	if rem == 0 {
		return "0s"
	}
	var b strings.Builder
	for _, u := range durationUnits {
		if n := rem / u.size; n > 0 {
			fmt.Fprintf(&b, "%d%s", n, u.name)
			rem -= n * u.size
		}
	}
	return b.String()
}
