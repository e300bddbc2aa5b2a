package schema

import (
	"bytes"
	"encoding/json"
	"iter"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Kind classifies a fragment by the structural role of its node.
type Kind int

const (
	KindAny Kind = iota
	KindPrimitive
	KindObject
	KindArray
	KindUnion
	KindIntersection
)

func (k Kind) String() string {
	//exhaustive:ignore
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindUnion:
		return "union"
	case KindIntersection:
		return "intersection"
	default:
		return "any"
	}
}

// Schema is a JSON Schema fragment as it appears in an OpenAPI 3.1 document.
//
// ID is the logical identifier assigned by the generator. It seeds reference
// naming and is never serialized. RecursiveRef marks a placeholder standing
// in for an enclosing schema with that identifier.
type Schema struct {
	ID           string `json:"-"`
	RecursiveRef string `json:"-"`

	Ref             string         `json:"$ref,omitempty"`
	Type            string         `json:"type,omitempty"`
	Format          string         `json:"format,omitempty"`
	ContentEncoding string         `json:"contentEncoding,omitempty"`
	Description     string         `json:"description,omitempty"`
	Enum            []any          `json:"enum,omitempty"`
	Properties      *Properties    `json:"properties,omitempty"`
	Required        []string       `json:"required,omitempty"`
	Items           *Schema        `json:"items,omitempty"`
	AllOf           []*Schema      `json:"allOf,omitempty"`
	AnyOf           []*Schema      `json:"anyOf,omitempty"`
	Discriminator   *Discriminator `json:"discriminator,omitempty"`

	// AdditionalProperties describes the values of an open map.
	AdditionalProperties *Schema `json:"additionalProperties,omitempty"`

	MinLength  *int     `json:"minLength,omitempty"`
	MaxLength  *int     `json:"maxLength,omitempty"`
	Pattern    string   `json:"pattern,omitempty"`
	Minimum    *float64 `json:"minimum,omitempty"`
	Maximum    *float64 `json:"maximum,omitempty"`
	MinItems   *int     `json:"minItems,omitempty"`
	MaxItems   *int     `json:"maxItems,omitempty"`
	Deprecated bool     `json:"deprecated,omitempty"`
}

// Kind reports the structural kind of the node.
func (s *Schema) Kind() Kind {
	switch {
	case len(s.AnyOf) > 0:
		return KindUnion
	case len(s.AllOf) > 0:
		return KindIntersection
	case s.Type == "array":
		return KindArray
	case s.Type == "object" || s.Properties.Len() > 0:
		return KindObject
	case s.Type != "":
		return KindPrimitive
	default:
		return KindAny
	}
}

// Clone returns a copy of s that can be modified without affecting s.
// Child schemas are shared.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	c := *s
	c.Enum = cloneSlice(s.Enum)
	c.Required = cloneSlice(s.Required)
	c.AllOf = cloneSlice(s.AllOf)
	c.AnyOf = cloneSlice(s.AnyOf)
	c.Properties = s.Properties.Clone()
	if s.Discriminator != nil {
		d := *s.Discriminator
		d.Mapping = s.Discriminator.Mapping.Clone()
		c.Discriminator = &d
	}
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// Discriminator selects a union member by the value of a property.
type Discriminator struct {
	PropertyName string   `json:"propertyName"`
	Mapping      *Mapping `json:"mapping,omitempty"`
}

// Properties is an insertion-ordered set of property schemas.
type Properties struct {
	m *sequencedmap.Map[string, *Schema]
}

// NewProperties returns an empty property set.
func NewProperties() *Properties {
	return &Properties{m: sequencedmap.New[string, *Schema]()}
}

// Set adds or replaces the schema for name. New names are appended.
func (p *Properties) Set(name string, s *Schema) {
	p.m.Set(name, s)
}

// Get returns the schema for name.
func (p *Properties) Get(name string) (*Schema, bool) {
	if p == nil {
		return nil, false
	}
	return p.m.Get(name)
}

// Len returns the number of properties. A nil set is empty.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return p.m.Len()
}

// All iterates properties in declaration order.
func (p *Properties) All() iter.Seq2[string, *Schema] {
	return func(yield func(string, *Schema) bool) {
		if p == nil {
			return
		}
		for name, s := range p.m.All() {
			if !yield(name, s) {
				return
			}
		}
	}
}

// Names returns the property names in declaration order.
func (p *Properties) Names() []string {
	names := make([]string, 0, p.Len())
	for name := range p.All() {
		names = append(names, name)
	}
	return names
}

// Clone returns a new set holding the same entries.
func (p *Properties) Clone() *Properties {
	if p == nil {
		return nil
	}
	c := NewProperties()
	for name, s := range p.All() {
		c.Set(name, s)
	}
	return c
}

// MarshalJSON encodes the properties as an object in declaration order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	return marshalOrdered(p.All())
}

// Mapping is an insertion-ordered map from discriminator value to a union
// member. Before assembly values are member identifiers; in a finished
// document they are component references.
type Mapping struct {
	m *sequencedmap.Map[string, string]
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{m: sequencedmap.New[string, string]()}
}

// Set maps value to target.
func (m *Mapping) Set(value, target string) {
	m.m.Set(value, target)
}

// Get returns the target for value.
func (m *Mapping) Get(value string) (string, bool) {
	if m == nil {
		return "", false
	}
	return m.m.Get(value)
}

// Len returns the number of entries. A nil mapping is empty.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return m.m.Len()
}

// All iterates the mapping in insertion order.
func (m *Mapping) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if m == nil {
			return
		}
		for value, target := range m.m.All() {
			if !yield(value, target) {
				return
			}
		}
	}
}

// Clone returns a new mapping holding the same entries.
func (m *Mapping) Clone() *Mapping {
	if m == nil {
		return nil
	}
	c := NewMapping()
	for value, target := range m.All() {
		c.Set(value, target)
	}
	return c
}

// MarshalJSON encodes the mapping as an object in insertion order.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	return marshalOrdered(m.All())
}

// marshalOrdered writes key/value pairs as a JSON object without sorting keys.
func marshalOrdered[V any](pairs iter.Seq2[string, V]) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for key, value := range pairs {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
