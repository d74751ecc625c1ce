package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type document struct {
	Types    []typeDecl    `yaml:"types"`
	Bindings []bindingDecl `yaml:"bindings"`
}

type typeDecl struct {
	Name   string   `yaml:"name"`
	Arity  int      `yaml:"arity"`
	Supers []string `yaml:"supers"`

	line int
}

func (d *typeDecl) UnmarshalYAML(node *yaml.Node) error {
	if err := checkFields(node, "name", "arity", "supers"); err != nil {
		return err
	}
	type plain typeDecl
	if err := node.Decode((*plain)(d)); err != nil {
		return err
	}
	d.line = node.Line
	return nil
}

type instanceDecl struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
}

func (d *instanceDecl) UnmarshalYAML(node *yaml.Node) error {
	if err := checkFields(node, "type", "name"); err != nil {
		return err
	}
	type plain instanceDecl
	return node.Decode((*plain)(d))
}

type targetDecl struct {
	Consumer *instanceDecl `yaml:"consumer"`
	Parents  []instanceDecl `yaml:"parents"`
	Packages []string       `yaml:"packages"`
}

func (d *targetDecl) UnmarshalYAML(node *yaml.Node) error {
	if err := checkFields(node, "consumer", "parents", "packages"); err != nil {
		return err
	}
	type plain targetDecl
	return node.Decode((*plain)(d))
}

type bindingDecl struct {
	Type   string        `yaml:"type"`
	Name   string        `yaml:"name"`
	Scope  string        `yaml:"scope"`
	Kind   string        `yaml:"kind"`
	Value  yaml.Node     `yaml:"value"`
	Alias  *instanceDecl `yaml:"alias"`
	Target *targetDecl   `yaml:"target"`

	line int
}

func (d *bindingDecl) UnmarshalYAML(node *yaml.Node) error {
	if err := checkFields(node, "type", "name", "scope", "kind", "value", "alias", "target"); err != nil {
		return err
	}
	type plain bindingDecl
	if err := node.Decode((*plain)(d)); err != nil {
		return err
	}
	d.line = node.Line
	return nil
}

// checkFields rejects mapping keys outside allowed. Decoders started from a node
// do not inherit KnownFields, so nested declarations check their own keys.
func checkFields(node *yaml.Node, allowed ...string) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i]
		known := false
		for _, a := range allowed {
			if key.Value == a {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("line %d: %w %q", key.Line, ErrUnknownField, key.Value)
		}
	}
	return nil
}
