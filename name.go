package inject

import "strings"

// Name discriminates several bindings of the same type.
//
// DefaultName is the most specific name, AnyName the least specific. A name
// ending in '*' is a prefix pattern: "db.*" is compatible with "db.primary".
type Name string

const (
	// DefaultName is the name of unnamed instances.
	DefaultName Name = ""

	// AnyName is compatible with every name.
	AnyName Name = "*"
)

// IsDefault reports whether n is the default name.
func (n Name) IsDefault() bool { return n == DefaultName }

// IsAny reports whether n is the any-name wildcard.
func (n Name) IsAny() bool { return n == AnyName }

// IsPattern reports whether n is a prefix pattern (AnyName included).
func (n Name) IsPattern() bool { return strings.HasSuffix(string(n), "*") }

// prefix returns the literal part of n.
func (n Name) prefix() string {
	return strings.TrimSuffix(string(n), "*")
}

// IsCompatibleWith reports whether n and other may denote the same instance.
// AnyName is compatible with everything and DefaultName only with itself and AnyName.
func (n Name) IsCompatibleWith(other Name) bool {
	if n.IsAny() || other.IsAny() || n == other {
		return true
	}
	if n.IsDefault() || other.IsDefault() {
		return false
	}

	np, op := n.prefix(), other.prefix()
	switch {
	case n.IsPattern() && other.IsPattern():
		return strings.HasPrefix(np, op) || strings.HasPrefix(op, np)
	case n.IsPattern():
		return strings.HasPrefix(string(other), np)
	case other.IsPattern():
		return strings.HasPrefix(string(n), op)
	}
	return false
}

// MoreQualifiedThan reports whether n is strictly more specific than other.
// DefaultName beats every other name, every name beats AnyName, a name that
// prefix-extends a shorter one beats it, and an exact name beats the pattern of
// the same prefix.
func (n Name) MoreQualifiedThan(other Name) bool {
	switch {
	case n == other:
		return false
	case other.IsAny():
		return true
	case n.IsAny():
		return false
	case n.IsDefault():
		return true
	case other.IsDefault():
		return false
	}

	np, op := n.prefix(), other.prefix()
	if len(np) > len(op) && strings.HasPrefix(np, op) {
		return true
	}
	return np == op && !n.IsPattern() && other.IsPattern()
}

// String returns the name, rendering the default name as "default".
func (n Name) String() string {
	if n.IsDefault() {
		return "default"
	}
	return string(n)
}

// compareNames is the total ranking order over names, most specific first.
// It refines MoreQualifiedThan: default first, any last, longer literal prefixes
// before shorter ones, exact before pattern, then lexical.
func compareNames(a, b Name) int {
	if a == b {
		return 0
	}
	if a.IsDefault() || b.IsAny() {
		return -1
	}
	if b.IsDefault() || a.IsAny() {
		return 1
	}
	ap, bp := a.prefix(), b.prefix()
	if c := compareInt(len(bp), len(ap)); c != 0 {
		return c
	}
	if a.IsPattern() != b.IsPattern() {
		if a.IsPattern() {
			return 1
		}
		return -1
	}
	return strings.Compare(string(a), string(b))
}
