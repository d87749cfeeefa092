// Package version parses RouterOS release strings and answers
// compatibility questions about API behavior that changed between
// releases.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// ModernLogin is the first release whose API accepts the password
// directly in the /login command. Earlier releases answer /login with
// an MD5 challenge instead.
var ModernLogin = RouterOS{Major: 6, Minor: 43}

// RouterOS is a parsed RouterOS release number, as reported by
// /system/resource in strings like "7.16.2 (stable)".
type RouterOS struct {
	Major   uint16
	Minor   uint16
	Patch   uint16
	Channel string
}

// Parse parses a release string such as "7.16.2 (stable)", "6.42" or
// "6.49.10 (long-term)". The patch component and the channel suffix
// are optional.
func Parse(s string) (RouterOS, error) {
	var v RouterOS

	base := strings.TrimSpace(s)
	if i := strings.Index(base, " ("); i >= 0 && strings.HasSuffix(base, ")") {
		v.Channel = base[i+2 : len(base)-1]
		base = base[:i]
	}

	parts := strings.Split(base, ".")
	if len(parts) != 2 && len(parts) != 3 {
		return RouterOS{}, fmt.Errorf("invalid version %q: expected major.minor or major.minor.patch", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return RouterOS{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return RouterOS{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	v.Major = uint16(major)
	v.Minor = uint16(minor)

	if len(parts) == 3 {
		patch, err := strconv.ParseUint(parts[2], 10, 16)
		if err != nil || parts[2] == "" {
			return RouterOS{}, fmt.Errorf("invalid version %q: bad patch component", s)
		}
		v.Patch = uint16(patch)
	}

	return v, nil
}

// String formats the release the way RouterOS reports it. The patch
// component is omitted when zero, the channel is appended when set.
func (v RouterOS) String() string {
	s := fmt.Sprintf("%d.%d", v.Major, v.Minor)
	if v.Patch != 0 {
		s = fmt.Sprintf("%s.%d", s, v.Patch)
	}
	if v.Channel != "" {
		s = fmt.Sprintf("%s (%s)", s, v.Channel)
	}
	return s
}

// Compare returns -1, 0 or 1 depending on whether v is older than,
// equal to or newer than other. The channel does not participate.
func (v RouterOS) Compare(other RouterOS) int {
	if v.Major != other.Major {
		if v.Major < other.Major {
			return -1
		}
		return 1
	}
	if v.Minor != other.Minor {
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	}
	if v.Patch != other.Patch {
		if v.Patch < other.Patch {
			return -1
		}
		return 1
	}
	return 0
}

// AtLeast returns true if v is other or any newer release.
func (v RouterOS) AtLeast(other RouterOS) bool {
	return v.Compare(other) >= 0
}

// RequiresChallengeLogin returns true if the release predates the
// 6.43 login rework and therefore expects the MD5 challenge-response
// exchange.
func (v RouterOS) RequiresChallengeLogin() bool {
	return v.Compare(ModernLogin) < 0
}
