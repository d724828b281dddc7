// Package describe renders a read-only report of a meta.Registry.
//
// Types are listed in dependency order: a pointer or reference variant
// always follows the type it derives from. Ties are broken by registration
// order, so the output is deterministic. The report marshals to YAML.
package describe

import (
	"io"

	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/topo"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/reflect-runtime/errors"
	"github.com/wippyai/reflect-runtime/meta"
)

// Document is the report of a whole registry.
type Document struct {
	Types  []Type `yaml:"types"`
	Frozen bool   `yaml:"frozen"`
}

// Type is the report of one registered type.
type Type struct {
	Name             string     `yaml:"name"`
	Kind             string     `yaml:"kind"`
	GoType           string     `yaml:"go_type,omitempty"`
	Final            bool       `yaml:"final,omitempty"`
	Pointer          string     `yaml:"pointer,omitempty"`
	Pointee          string     `yaml:"pointee,omitempty"`
	Referent         string     `yaml:"referent,omitempty"`
	Constructors     []string   `yaml:"constructors,omitempty"`
	Destructor       bool       `yaml:"destructor,omitempty"`
	Properties       []Property `yaml:"properties,omitempty"`
	Functions        []string   `yaml:"functions,omitempty"`
	StaticProperties []Property `yaml:"static_properties,omitempty"`
	StaticFunctions  []string   `yaml:"static_functions,omitempty"`
	Conversions      []string   `yaml:"conversions,omitempty"`
}

// Property names a property and its value type.
type Property struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Option filters the types included in a Document.
type Option func(*options)

type options struct {
	skipVariants bool
	names        map[string]bool
}

// SkipVariants leaves pointer and reference variants out of the report.
func SkipVariants() Option {
	return func(o *options) {
		o.skipVariants = true
	}
}

// Only restricts the report to the named types.
func Only(names ...string) Option {
	return func(o *options) {
		if o.names == nil {
			o.names = make(map[string]bool, len(names))
		}
		for _, n := range names {
			o.names[n] = true
		}
	}
}

// Registry builds the report of r.
func Registry(r *meta.Registry, opts ...Option) (Document, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ordered, err := dependencyOrder(r.Types())
	if err != nil {
		return Document{}, err
	}

	doc := Document{Frozen: r.Frozen()}
	for _, t := range ordered {
		if o.skipVariants && t.Kind() != meta.TypeValue {
			continue
		}
		if o.names != nil && !o.names[t.Name()] {
			continue
		}
		doc.Types = append(doc.Types, Describe(t))
	}
	return doc, nil
}

// Describe builds the report of a single type.
func Describe(t *meta.Type) Type {
	out := Type{
		Name:       t.Name(),
		Kind:       t.Kind().String(),
		Final:      t.IsFinal(),
		Destructor: t.Destructor() != nil,
	}
	if gt := t.GoType(); gt != nil {
		out.GoType = gt.String()
	}
	if p := t.AddPointer(); p != nil {
		out.Pointer = p.Name()
	}
	if p := t.RemovePointer(); p != nil {
		out.Pointee = p.Name()
	}
	if ref := t.Referent(); ref != nil {
		out.Referent = ref.Name()
	}
	for _, c := range t.Constructors() {
		out.Constructors = append(out.Constructors, c.String())
	}
	for _, p := range t.Properties() {
		out.Properties = append(out.Properties, Property{Name: p.Name(), Type: p.Type().Name()})
	}
	for _, f := range t.Functions() {
		out.Functions = append(out.Functions, f.String())
	}
	for _, p := range t.StaticProperties() {
		out.StaticProperties = append(out.StaticProperties, Property{Name: p.Name(), Type: p.Type().Name()})
	}
	for _, f := range t.StaticFunctions() {
		out.StaticFunctions = append(out.StaticFunctions, f.String())
	}
	for _, c := range t.Conversions() {
		out.Conversions = append(out.Conversions, c.To().Name())
	}
	return out
}

// WriteYAML encodes doc to w.
func WriteYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.PhaseLookup, errors.KindInvalidInput, err, "encode registry report")
	}
	return enc.Close()
}

// ReadYAML decodes a report written by WriteYAML.
func ReadYAML(r io.Reader) (Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, errors.Wrap(errors.PhaseLookup, errors.KindInvalidInput, err, "decode registry report")
	}
	return doc, nil
}

type typeNode struct {
	t  *meta.Type
	id int64
}

func (n typeNode) ID() int64 { return n.id }

// dependencyOrder sorts types so that every variant follows its base.
func dependencyOrder(types []*meta.Type) ([]*meta.Type, error) {
	g := multi.NewDirectedGraph()
	nodes := make(map[*meta.Type]typeNode, len(types))
	for i, t := range types {
		n := typeNode{t: t, id: int64(i)}
		nodes[t] = n
		g.AddNode(n)
	}
	for _, t := range types {
		for _, base := range []*meta.Type{t.RemovePointer(), t.Referent()} {
			if from, ok := nodes[base]; ok && base != nil {
				g.SetLine(g.NewLine(from, nodes[t]))
			}
		}
	}

	// Node IDs are registration indexes; a nil order breaks ties by ID.
	sorted, err := topo.SortStabilized(g, nil)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLookup, errors.KindInvalidInput, err, "type derivation cycle")
	}

	out := make([]*meta.Type, len(sorted))
	for i, n := range sorted {
		out[i] = n.(typeNode).t
	}
	return out, nil
}
