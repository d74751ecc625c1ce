// Package manifest loads bindings from a YAML document.
//
// A manifest declares the types it uses and binds instances of them either to
// constant values or to other instances:
//
//	types:
//	  - name: example.com/db.Config
//	  - name: example.com/coll.List
//	    arity: 1
//	    supers: ["example.com/coll.Collection[$0]"]
//	bindings:
//	  - type: example.com/db.Config
//	    name: primary
//	    value: {dsn: "postgres://primary"}
//	  - type: example.com/db.Config
//	    alias: {type: example.com/db.Config, name: primary}
//	    target:
//	      consumer: {type: example.com/web.Handler}
//	      packages: [example.com/web/...]
//
// Bases already declared in Go can be made visible to a manifest with WithBases.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/junioryono/inject"
	"github.com/junioryono/inject/supply"
)

var (
	// ErrUnknownType is returned when a type reference names an undeclared base.
	ErrUnknownType = errors.New("unknown type")

	// ErrAmbiguousType is returned when a simple type name matches more than one base.
	ErrAmbiguousType = errors.New("ambiguous type name")

	// ErrDuplicateType is returned when a base is declared twice.
	ErrDuplicateType = errors.New("type declared twice")

	// ErrNoProduction is returned for a binding with neither value nor alias.
	ErrNoProduction = errors.New("binding needs a value or an alias")

	// ErrBothProductions is returned for a binding with both value and alias.
	ErrBothProductions = errors.New("binding has both a value and an alias")

	// ErrUnknownField is returned for a mapping key the manifest does not define.
	ErrUnknownField = errors.New("unknown field")
)

// Error locates a problem in a manifest.
type Error struct {
	Source string
	Path   string // e.g. "bindings[2]"
	Line   int
	Err    error
}

func (e Error) Error() string {
	return fmt.Sprintf("%s:%d: %s: %v", e.Source, e.Line, e.Path, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}

// TypeRefError reports a malformed or unresolvable type reference.
type TypeRefError struct {
	Ref   string
	Cause error
}

func (e TypeRefError) Error() string {
	return fmt.Sprintf("type reference %q: %v", e.Ref, e.Cause)
}

func (e TypeRefError) Unwrap() error {
	return e.Cause
}

var (
	_ error = Error{}
	_ error = TypeRefError{}
)

// Manifest is a loaded binding manifest.
type Manifest struct {
	source   string
	bases    map[string]*inject.Base
	declared []*inject.Base
	bindings []inject.Binding
}

type config struct {
	source string
	bases  []*inject.Base
	logger logrus.FieldLogger
}

// Option configures Load.
type Option func(*config)

// WithBases makes bases declared in Go visible to type references.
func WithBases(bases ...*inject.Base) Option {
	return func(c *config) {
		c.bases = append(c.bases, bases...)
	}
}

// WithSource names the manifest in errors and binding origins.
func WithSource(name string) Option {
	return func(c *config) {
		c.source = name
	}
}

// WithLogger sets the logger receiving load progress at debug level.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// LoadFile loads the manifest at path.
func LoadFile(path string, opts ...Option) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open manifest")
	}
	defer f.Close()

	return Load(f, append([]Option{WithSource(path)}, opts...)...)
}

// Load reads a manifest from r.
func Load(r io.Reader, opts ...Option) (*Manifest, error) {
	cfg := &config{source: "manifest", logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(cfg)
	}

	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, pkgerrors.Wrapf(err, "decode %s", cfg.source)
	}

	m := &Manifest{
		source: cfg.source,
		bases:  make(map[string]*inject.Base, len(cfg.bases)+len(doc.Types)),
	}
	for _, b := range cfg.bases {
		m.bases[b.String()] = b
	}

	for i, decl := range doc.Types {
		base, err := m.declare(decl)
		if err != nil {
			return nil, m.errorAt(fmt.Sprintf("types[%d]", i), decl.line, err)
		}
		cfg.logger.WithField("type", base).Debug("declared type")
	}

	for i, decl := range doc.Bindings {
		b, err := m.bind(decl)
		if err != nil {
			return nil, m.errorAt(fmt.Sprintf("bindings[%d]", i), decl.line, err)
		}
		m.bindings = append(m.bindings, b)
	}

	cfg.logger.WithFields(logrus.Fields{
		"source":   m.source,
		"types":    len(m.declared),
		"bindings": len(m.bindings),
	}).Debug("manifest loaded")

	return m, nil
}

func (m *Manifest) errorAt(path string, line int, err error) error {
	return Error{Source: m.source, Path: path, Line: line, Err: err}
}

func (m *Manifest) declare(decl typeDecl) (*inject.Base, error) {
	if _, ok := m.bases[decl.Name]; ok {
		return nil, pkgerrors.Wrap(ErrDuplicateType, decl.Name)
	}

	supers := make([]inject.Type, 0, len(decl.Supers))
	for _, ref := range decl.Supers {
		t, err := parseType(ref, decl.Arity, m.lookup)
		if err != nil {
			return nil, err
		}
		supers = append(supers, t)
	}

	base, err := inject.DeclareBase(decl.Name, decl.Arity, supers...)
	if err != nil {
		return nil, err
	}

	m.bases[base.String()] = base
	m.declared = append(m.declared, base)
	return base, nil
}

func (m *Manifest) bind(decl bindingDecl) (inject.Binding, error) {
	inst, err := m.instance(instanceDecl{Type: decl.Type, Name: decl.Name})
	if err != nil {
		return inject.Binding{}, err
	}

	var kind inject.DeclarationKind
	if err := kind.UnmarshalText([]byte(decl.Kind)); err != nil {
		return inject.Binding{}, err
	}

	target, err := m.target(decl.Target)
	if err != nil {
		return inject.Binding{}, err
	}

	var supplier inject.Supplier
	switch {
	case decl.Value.Kind != 0 && decl.Alias != nil:
		return inject.Binding{}, ErrBothProductions
	case decl.Value.Kind != 0:
		var v any
		if err := decl.Value.Decode(&v); err != nil {
			return inject.Binding{}, pkgerrors.Wrap(err, "decode value")
		}
		supplier = supply.Constant(v)
	case decl.Alias != nil:
		alias, err := m.instance(*decl.Alias)
		if err != nil {
			return inject.Binding{}, pkgerrors.Wrap(err, "alias")
		}
		supplier = aliasOf(alias)
	default:
		return inject.Binding{}, ErrNoProduction
	}

	return inject.Binding{
		Resource: inject.Resource{Instance: inst, Target: target},
		Supplier: supplier,
		Scope:    inject.ScopeID(decl.Scope),
		Source:   inject.Source{Kind: kind, Origin: fmt.Sprintf("%s:%d", m.source, decl.line)},
	}, nil
}

// aliasOf resolves inst in place of the bound instance, keeping the hierarchy.
func aliasOf(inst inject.Instance) inject.Supplier {
	return inject.SupplierFunc(func(ctx context.Context, dep inject.Dependency, inj inject.Injector) (any, error) {
		return inj.Resolve(ctx, dep.Request(inst))
	})
}

func (m *Manifest) instance(decl instanceDecl) (inject.Instance, error) {
	t, err := m.Type(decl.Type)
	if err != nil {
		return inject.Instance{}, err
	}
	return inject.NamedInstance(inject.Name(decl.Name), t), nil
}

func (m *Manifest) target(decl *targetDecl) (inject.Target, error) {
	if decl == nil {
		return inject.Everywhere, nil
	}

	target := inject.Everywhere
	if decl.Consumer != nil {
		consumer, err := m.instance(*decl.Consumer)
		if err != nil {
			return inject.Target{}, pkgerrors.Wrap(err, "target consumer")
		}
		target = inject.Into(consumer)
	}

	if len(decl.Parents) > 0 {
		if decl.Consumer == nil {
			return inject.Target{}, errors.New("target parents need a consumer")
		}
		parents := make([]inject.Instance, 0, len(decl.Parents))
		for _, p := range decl.Parents {
			parent, err := m.instance(p)
			if err != nil {
				return inject.Target{}, pkgerrors.Wrap(err, "target parent")
			}
			parents = append(parents, parent)
		}
		target = target.Within(parents...)
	}

	if len(decl.Packages) > 0 {
		target = target.In(decl.Packages...)
	}

	return target, nil
}

// lookup finds a base by qualified name, or by simple name when that is unambiguous.
func (m *Manifest) lookup(name string) (*inject.Base, error) {
	if b, ok := m.bases[name]; ok {
		return b, nil
	}

	var found *inject.Base
	for _, b := range m.bases {
		if b.Name() != name {
			continue
		}
		if found != nil {
			return nil, pkgerrors.Wrap(ErrAmbiguousType, name)
		}
		found = b
	}
	if found == nil {
		return nil, pkgerrors.Wrap(ErrUnknownType, name)
	}
	return found, nil
}

// Type parses a type reference against the manifest's bases.
func (m *Manifest) Type(ref string) (inject.Type, error) {
	return parseType(ref, 0, m.lookup)
}

// Instance parses a type reference and pairs it with name.
func (m *Manifest) Instance(name, ref string) (inject.Instance, error) {
	return m.instance(instanceDecl{Type: ref, Name: name})
}

// Bindings returns the manifest's bindings in declaration order.
func (m *Manifest) Bindings() []inject.Binding {
	return slices.Clone(m.bindings)
}

// Bases returns the bases the manifest declared, in declaration order.
func (m *Manifest) Bases() []*inject.Base {
	return slices.Clone(m.declared)
}

// Source returns the name the manifest was loaded under.
func (m *Manifest) Source() string {
	return m.source
}

func (m *Manifest) String() string {
	return fmt.Sprintf("Manifest(%s: %d types, %d bindings)", m.source, len(m.declared), len(m.bindings))
}
