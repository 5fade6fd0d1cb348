package internal

import (
	"strconv"
	"strings"
)

// Version is the storytl release reported by --version
const Version = "0.4.0"

// IsBlank reports whether s is empty or consists only of whitespace.
// Full-width ideographic spaces count as whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// NaturalLess orders identifiers so that numeric ids sort by value
// ("2" before "10") and everything else sorts lexically
func NaturalLess(a, b string) bool {
	ai, aErr := strconv.ParseUint(a, 10, 64)
	bi, bErr := strconv.ParseUint(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		if ai != bi {
			return ai < bi
		}
		return a < b
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	}
	return a < b
}
