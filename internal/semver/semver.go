// Package semver wraps github.com/Masterminds/semver/v3 for bundle versions
// and requirement constraints.
package semver

import (
	"fmt"

	mm "github.com/Masterminds/semver/v3"
)

// Version is a parsed bundle version. The zero value is "no version" and
// sorts below every real version.
type Version struct {
	v *mm.Version
}

// Constraint is a version range such as "^1.2", "~3.4.0" or ">=1, <2".
// The zero value matches nothing.
type Constraint struct {
	c *mm.Constraints
}

// Any is the constraint used when a requirement names no range.
const Any = "*"

func ParseVersion(raw string) (Version, error) {
	v, err := mm.NewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse version %q: %w", raw, err)
	}
	return Version{v: v}, nil
}

func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseConstraint parses raw; an empty string means Any.
func ParseConstraint(raw string) (Constraint, error) {
	if raw == "" {
		raw = Any
	}
	c, err := mm.NewConstraint(raw)
	if err != nil {
		return Constraint{}, fmt.Errorf("semver: parse constraint %q: %w", raw, err)
	}
	return Constraint{c: c}, nil
}

func MustParseConstraint(raw string) Constraint {
	c, err := ParseConstraint(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (v Version) IsZero() bool { return v.v == nil }

func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

func (c Constraint) String() string {
	if c.c == nil {
		return ""
	}
	return c.c.String()
}

func Satisfies(v Version, c Constraint) bool {
	if v.v == nil || c.c == nil {
		return false
	}
	return c.c.Check(v.v)
}

// Compare returns -1, 0 or 1 as a is lower than, equal to or higher than b.
func Compare(a, b Version) int {
	switch {
	case a.v == nil && b.v == nil:
		return 0
	case a.v == nil:
		return -1
	case b.v == nil:
		return 1
	}
	return a.v.Compare(b.v)
}

// MaxSatisfying returns the index of the highest candidate satisfying c.
// Among equal versions the first one wins.
func MaxSatisfying(c Constraint, candidates []Version) (int, bool) {
	best := -1
	for i, candidate := range candidates {
		if !Satisfies(candidate, c) {
			continue
		}
		if best < 0 || Compare(candidate, candidates[best]) > 0 {
			best = i
		}
	}
	return best, best >= 0
}
