package inject

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
)

// DeclarationKind records how a binding came to exist.
// Higher kinds are more specific and win over lower ones during ranking.
type DeclarationKind int

const (
	// Default bindings are fallbacks shipped alongside a type.
	Default DeclarationKind = iota

	// Implicit bindings are derived from another declaration.
	Implicit

	// Auto bindings are discovered by convention.
	Auto

	// Explicit bindings were declared by hand.
	Explicit
)

// String returns the string representation of the kind.
func (k DeclarationKind) String() string {
	switch k {
	case Default:
		return "Default"
	case Implicit:
		return "Implicit"
	case Auto:
		return "Auto"
	case Explicit:
		return "Explicit"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// IsValid checks if the kind is valid.
func (k DeclarationKind) IsValid() bool {
	return k >= Default && k <= Explicit
}

// MarshalText implements encoding.TextMarshaler.
func (k DeclarationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *DeclarationKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "default":
		*k = Default
	case "implicit":
		*k = Implicit
	case "auto":
		*k = Auto
	case "explicit", "":
		*k = Explicit
	default:
		return DeclarationKindError{Value: string(text)}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (k DeclarationKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *DeclarationKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	return k.UnmarshalText([]byte(s))
}

// Source is the provenance of a binding.
type Source struct {
	Kind   DeclarationKind
	Origin string // free-form, usually file:line
}

// Here returns a Source of the given kind whose origin is the caller's file and line.
func Here(kind DeclarationKind) Source {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		return Source{Kind: kind}
	}
	return Source{Kind: kind, Origin: fmt.Sprintf("%s:%d", file, line)}
}

func (s Source) String() string {
	if s.Origin == "" {
		return s.Kind.String()
	}
	return s.Kind.String() + " at " + s.Origin
}
