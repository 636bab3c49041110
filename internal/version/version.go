// Package version parses and compares "major.minor" database version numbers.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Number is an immutable major.minor version.
type Number struct {
	Major int
	Minor int
}

// ParseError reports a version string (or component pair) that cannot be
// turned into a Number.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid version number %q: %s", e.Input, e.Reason)
}

// New builds a Number from integer components. Negative components are rejected.
func New(major, minor int) (Number, error) {
	if major < 0 || minor < 0 {
		return Number{}, &ParseError{
			Input:  fmt.Sprintf("%d.%d", major, minor),
			Reason: "components must not be negative",
		}
	}
	return Number{Major: major, Minor: minor}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Number {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Parse accepts exactly "<major>.<minor>" or "<major>" (minor 0).
func Parse(s string) (Number, error) {
	if s == "" {
		return Number{}, &ParseError{Input: s, Reason: "empty string"}
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Number{}, &ParseError{Input: s, Reason: "expected <major>.<minor>"}
	}

	major, err := parseComponent(parts[0])
	if err != nil {
		return Number{}, &ParseError{Input: s, Reason: "major " + err.Error()}
	}

	minor := 0
	if len(parts) == 2 {
		minor, err = parseComponent(parts[1])
		if err != nil {
			return Number{}, &ParseError{Input: s, Reason: "minor " + err.Error()}
		}
	}

	return Number{Major: major, Minor: minor}, nil
}

// ParseProduct extracts the leading major[.minor] from a server-reported
// product version such as "9.00.1399.06" or "16.2 (Debian 16.2-1)".
// Everything after the minor component is ignored.
func ParseProduct(s string) (Number, error) {
	trimmed := strings.TrimSpace(s)

	major, rest := leadingDigits(trimmed)
	if major == "" {
		return Number{}, &ParseError{Input: s, Reason: "no leading version digits"}
	}

	minor := "0"
	if strings.HasPrefix(rest, ".") {
		if digits, _ := leadingDigits(rest[1:]); digits != "" {
			minor = digits
		}
	}

	majorN, err := strconv.Atoi(major)
	if err != nil {
		return Number{}, &ParseError{Input: s, Reason: err.Error()}
	}
	minorN, err := strconv.Atoi(minor)
	if err != nil {
		return Number{}, &ParseError{Input: s, Reason: err.Error()}
	}
	return Number{Major: majorN, Minor: minorN}, nil
}

func parseComponent(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("component is empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("component %q is not a non-negative integer", s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("component %q: %w", s, err)
	}
	return n, nil
}

func leadingDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}

// Compare returns -1, 0 or 1 comparing v to other by (major, minor).
func (v Number) Compare(other Number) int {
	switch {
	case v.Major < other.Major:
		return -1
	case v.Major > other.Major:
		return 1
	case v.Minor < other.Minor:
		return -1
	case v.Minor > other.Minor:
		return 1
	default:
		return 0
	}
}

// Less reports whether v sorts before other.
func (v Number) Less(other Number) bool {
	return v.Compare(other) < 0
}

// AtLeast reports whether v >= major.minor.
func (v Number) AtLeast(major, minor int) bool {
	return v.Compare(Number{Major: major, Minor: minor}) >= 0
}

// String renders the version as "major.minor".
func (v Number) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
}
