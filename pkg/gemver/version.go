package gemver

import (
	"cmp"
	"strconv"
	"strings"
)

// Component is one dot-separated part of a version.
type Component struct {
	num     uint64
	str     string
	numeric bool
}

func parseComponent(s string) Component {
	if s != "" && isDigits(s) {
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return Component{num: n, str: s, numeric: true}
		}
	}
	return Component{str: s}
}

// IsNumeric reports whether the component is a non-negative integer.
func (c Component) IsNumeric() bool { return c.numeric }

// String returns the component as written.
func (c Component) String() string { return c.str }

func compareComponents(a, b Component) int {
	if a.numeric && b.numeric {
		return cmp.Compare(a.num, b.num)
	}
	return strings.Compare(a.str, b.str)
}

// Version is an immutable sequence of components.
type Version struct {
	raw   string
	parts []Component
}

// ParseVersion splits s on "." into components. It never fails: segments
// that are not numbers are kept as opaque strings.
func ParseVersion(s string) Version {
	s = strings.TrimSpace(s)
	fields := strings.Split(s, ".")
	parts := make([]Component, len(fields))
	for i, f := range fields {
		parts[i] = parseComponent(f)
	}
	return Version{raw: s, parts: parts}
}

// Len returns the number of components.
func (v Version) Len() int { return len(v.parts) }

// At returns the i-th component.
func (v Version) At(i int) Component { return v.parts[i] }

// String returns the version as it was parsed.
func (v Version) String() string { return v.raw }

// Compare returns -1, 0 or +1. The first differing component decides; if
// one version is a strict prefix of the other the shorter one is smaller.
func Compare(a, b Version) int {
	for i := range min(len(a.parts), len(b.parts)) {
		if c := compareComponents(a.parts[i], b.parts[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a.parts), len(b.parts))
}

// CompareStrings parses and compares two version strings.
func CompareStrings(a, b string) int {
	return Compare(ParseVersion(a), ParseVersion(b))
}

// compatible implements "~>": c must have at least as many components as r,
// share all but the last of r's components, and not be lower than r in the
// last one.
func compatible(r, c Version) bool {
	k := r.Len()
	if c.Len() < k {
		return false
	}
	n := k - 1
	for i := range n {
		if compareComponents(c.parts[i], r.parts[i]) != 0 {
			return false
		}
	}
	return compareComponents(c.parts[n], r.parts[n]) >= 0
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
