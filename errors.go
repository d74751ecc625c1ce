package inject

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/junioryono/inject/internal/repository"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// These are base errors that are wrapped in typed errors when returned.

var (
	// Declaration errors.
	ErrBaseNameEmpty = errors.New("base name cannot be empty")
	ErrTypeNil       = errors.New("type parameter cannot be the zero type")

	// Binding validation errors.
	ErrSupplierNil       = errors.New("supplier cannot be nil")
	ErrMissingType       = errors.New("resource type cannot be the zero type")
	ErrResourceWildcard  = errors.New("resource type cannot be a wildcard")
	ErrTypeVariable      = errors.New("type variables cannot be bound or requested")
	ErrScopeUnregistered = errors.New("scope is not registered")

	// Scope errors.
	ErrScopeNil       = errors.New("scope cannot be nil")
	ErrScopeNameEmpty = errors.New("scope name cannot be empty")
	ErrScopeDuplicate = errors.New("scope already registered")
	ErrNoStrand       = errors.New("strand scope used without a strand (see WithStrand)")
	ErrStrandReleased = errors.New("strand has been released")

	// Resolution errors.
	ErrWildcardRequest     = errors.New("a wildcard type cannot be requested at the top level")
	ErrReentrantProduction = repository.ErrReentrant
	ErrContainerClosed     = errors.New("container has been closed")
	ErrInjectorNil         = errors.New("injector cannot be nil")
)

var (
	_ error = DeclarationError{}
	_ error = TypeArityError{}
	_ error = DeclarationKindError{}
	_ error = BuildError{}
	_ error = ClashError{}
	_ error = ScopeError{}
	_ error = NoResourceError{}
	_ error = CycleError{}
	_ error = UnstableDependencyError{}
	_ error = ProductionError{}
	_ error = UsageError{}
	_ error = DepthError{}
	_ error = TypeMismatchError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// DeclarationError indicates an invalid base declaration.
type DeclarationError struct {
	Name  string
	Cause error
}

func (e DeclarationError) Error() string {
	return fmt.Sprintf("invalid base declaration %q: %v", e.Name, e.Cause)
}

func (e DeclarationError) Unwrap() error {
	return e.Cause
}

// TypeArityError indicates a base parameterized with the wrong number of types.
type TypeArityError struct {
	Base *Base
	Got  int
	Want int
}

func (e TypeArityError) Error() string {
	if e.Base == nil {
		return fmt.Sprintf("too many type parameters: %d (at most %d)", e.Got, e.Want)
	}
	return fmt.Sprintf("%s takes %d type parameters, got %d", e.Base, e.Want, e.Got)
}

// DeclarationKindError indicates an invalid declaration kind value.
type DeclarationKindError struct {
	Value any
}

func (e DeclarationKindError) Error() string {
	return fmt.Sprintf("invalid declaration kind: %v", e.Value)
}

// BuildError wraps errors that prevent a container from being built.
type BuildError struct {
	Phase   string // "validation", "scopes", "index"
	Details string
	Cause   error
}

func (e BuildError) Error() string {
	return fmt.Sprintf("build failed during %s phase: %s: %v", e.Phase, e.Details, e.Cause)
}

func (e BuildError) Unwrap() error {
	return e.Cause
}

// ClashError indicates two bindings that rank equally for the same resource.
type ClashError struct {
	First  Binding
	Second Binding
}

func (e ClashError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("bindings clash on %s:\n\n", e.First.Resource))
	b.WriteString(fmt.Sprintf("    %s\n", e.First))
	b.WriteString(fmt.Sprintf("    %s\n", e.Second))

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Remove one of the bindings\n")
	b.WriteString("  • Give one of them a different name or target\n")
	b.WriteString("  • Declare the fallback with a lower declaration kind\n")

	return b.String()
}

// ScopeError indicates an invalid or unregistered scope.
type ScopeError struct {
	Binding *Binding // nil for registry errors
	Scope   ScopeID
	Cause   error
}

func (e ScopeError) Error() string {
	if e.Binding != nil {
		return fmt.Sprintf("scope %q of %s: %v", e.Scope, e.Binding.Resource, e.Cause)
	}
	if e.Scope != "" {
		return fmt.Sprintf("scope %q: %v", e.Scope, e.Cause)
	}
	return fmt.Sprintf("scope: %v", e.Cause)
}

func (e ScopeError) Unwrap() error {
	return e.Cause
}

// RejectionReason tells why a binding of the wanted base was not a candidate.
type RejectionReason int

const (
	// RejectedName means the binding's name is not compatible.
	RejectedName RejectionReason = iota + 1

	// RejectedTarget means the binding is not available where it was requested.
	RejectedTarget

	// RejectedType means the binding's type is not assignable.
	RejectedType
)

func (r RejectionReason) String() string {
	switch r {
	case RejectedName:
		return "name"
	case RejectedTarget:
		return "target"
	case RejectedType:
		return "type"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// Rejection is a binding that was considered and the reason it did not match.
type Rejection struct {
	Binding Binding
	Reason  RejectionReason
}

// NoResourceError indicates that no binding can satisfy a dependency.
type NoResourceError struct {
	Dependency Dependency
	Rejected   []Rejection
}

func (e NoResourceError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("no resource for %s", e.Dependency.Wanted))
	if e.Dependency.Depth() > 0 {
		b.WriteString(fmt.Sprintf("\n  required by %s", e.Dependency))
	}

	if len(e.Rejected) > 0 {
		b.WriteString("\n\nConsidered but rejected:\n")
		for _, r := range e.Rejected {
			b.WriteString(fmt.Sprintf("  • %s (%s mismatch)\n", r.Binding.Resource, r.Reason))
		}
	} else {
		b.WriteString("\n")
	}

	b.WriteString("\nMake sure a binding exists with a compatible name, target and type.")
	return b.String()
}

// CycleError indicates a dependency that requires itself.
type CycleError struct {
	Dependency Dependency
	Injection  Injection
	Path       []Injection // from the first occurrence to the repeated injection
}

func (e CycleError) Error() string {
	var b strings.Builder
	b.WriteString("dependency cycle detected:\n\n")

	path := e.Path
	if len(path) == 0 {
		path = []Injection{e.Injection}
	}
	for i, f := range path {
		if i == len(path)-1 && len(path) > 1 {
			b.WriteString(fmt.Sprintf("    %s (cycle)\n", f.Target.Instance))
			break
		}
		b.WriteString(fmt.Sprintf("    %s\n", f.Target.Instance))
		b.WriteString("      ↓\n")
	}
	if len(path) == 1 {
		b.WriteString(fmt.Sprintf("    %s (cycle)\n", path[0].Target.Instance))
	}

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Depend on an interface bound elsewhere to break the dependency\n")
	b.WriteString("  • Restructure to remove the circular relationship\n")

	return b.String()
}

// UnstableDependencyError indicates a short-lived instance injected into a
// longer-lived one.
type UnstableDependencyError struct {
	Dependency Dependency
	Injection  Injection
	Outer      Injection // the enclosing injection the scope is not stable in
}

func (e UnstableDependencyError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("unstable dependency: %s (%s) cannot be injected into %s (%s)\n\n",
		e.Injection.Target.Instance, scopeName(e.Injection.Scope),
		e.Outer.Target.Instance, scopeName(e.Outer.Scope)))

	b.WriteString("The enclosing instance would keep a reference that outlives its scope.\n\n")

	b.WriteString("To resolve this:\n")
	b.WriteString(fmt.Sprintf("  • Bind %s in a longer-lived scope\n", e.Injection.Target.Instance))
	b.WriteString(fmt.Sprintf("  • Bind %s in a shorter-lived scope\n", e.Outer.Target.Instance))

	return b.String()
}

func scopeName(s Scope) string {
	if s == nil {
		return "<nil>"
	}
	return string(s.Name())
}

// ProductionError wraps a supplier failure. Panics are recovered into Panic and Stack.
type ProductionError struct {
	Dependency Dependency
	Binding    Binding
	Cause      error
	Panic      any
	Stack      []byte
}

func (e ProductionError) Error() string {
	var b strings.Builder
	if e.Panic != nil {
		b.WriteString(fmt.Sprintf("supplier of %s panicked: %v", e.Binding.Resource, e.Panic))
	} else {
		b.WriteString(fmt.Sprintf("supplier of %s failed: %v", e.Binding.Resource, e.Cause))
	}
	if e.Dependency.Depth() > 0 {
		b.WriteString(fmt.Sprintf("\n  required by %s", e.Dependency))
	}
	if len(e.Stack) > 0 {
		b.WriteString("\n\nStack trace:\n")
		b.Write(e.Stack)
	}
	return b.String()
}

func (e ProductionError) Unwrap() error {
	return e.Cause
}

// UsageError indicates a request that cannot be resolved by construction.
type UsageError struct {
	Dependency Dependency
	Cause      error
}

func (e UsageError) Error() string {
	return fmt.Sprintf("cannot resolve %s: %v", e.Dependency.Wanted, e.Cause)
}

func (e UsageError) Unwrap() error {
	return e.Cause
}

// DepthError indicates a hierarchy deeper than the configured limit.
type DepthError struct {
	Dependency Dependency
	MaxDepth   int
}

func (e DepthError) Error() string {
	return fmt.Sprintf("resolution of %s exceeds the maximum depth of %d", e.Dependency.Wanted, e.MaxDepth)
}

// TypeMismatchError indicates a resolved value of an unexpected Go type.
type TypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
	Context  string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Context, formatType(e.Expected), formatType(e.Actual))
}

// IsNoResource reports whether err is or wraps a NoResourceError.
func IsNoResource(err error) bool {
	var nr NoResourceError
	return errors.As(err, &nr)
}

// IsCycle reports whether err is or wraps a CycleError.
func IsCycle(err error) bool {
	var ce CycleError
	return errors.As(err, &ce)
}

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind() {
	case reflect.Pointer:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Slice:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "[]" + elem.Name()
		}
		return t.String()
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}
