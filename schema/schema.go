package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the JSON Schema "type" discriminant of a node.
type Kind string

const (
	KindNull    Kind = "null"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

var knownKinds = []Kind{KindNull, KindString, KindNumber, KindInteger, KindBoolean, KindObject, KindArray}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range knownKinds {
		if k == known {
			return true
		}
	}
	return false
}

func kindList() string {
	names := make([]string, len(knownKinds))
	for i, k := range knownKinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// Schema is one node of a recursive JSON Schema document.
//
// A zero Kind denotes the empty schema {} which accepts any value; it is the
// items schema inferred for empty arrays. Use the constructors to build nodes
// so that Properties is only set on objects and Items only on arrays.
// Keywords other than the fields below are dropped when parsing.
type Schema struct {
	SchemaURI   string `json:"$schema,omitempty"`
	Kind        Kind   `json:"type,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	Properties *Properties `json:"properties,omitempty"`
	Required   []string    `json:"required,omitempty"`
	// nil means true, the JSON Schema default.
	AdditionalProperties *bool `json:"additionalProperties,omitempty"`

	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	Format    string   `json:"format,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
	Enum      []any    `json:"enum,omitempty"`
	Default   any      `json:"default,omitempty"`

	Examples []any `json:"examples,omitempty"`
}

// Empty returns the empty schema {}.
func Empty() *Schema { return &Schema{} }

// NewNull returns {"type":"null"}.
func NewNull() *Schema { return &Schema{Kind: KindNull} }

// NewPrimitive returns a schema for a string, number, integer or boolean.
func NewPrimitive(kind Kind) *Schema { return &Schema{Kind: kind} }

// NewObject returns an object schema with an empty, ordered property set.
func NewObject() *Schema {
	return &Schema{Kind: KindObject, Properties: NewProperties()}
}

// NewArray returns an array schema. A nil items schema becomes {}.
func NewArray(items *Schema) *Schema {
	if items == nil {
		items = Empty()
	}
	return &Schema{Kind: KindArray, Items: items}
}

// AllowsAdditional reports the effective additionalProperties value.
func (s *Schema) AllowsAdditional() bool {
	return s.AdditionalProperties == nil || *s.AdditionalProperties
}

// SetAdditionalProperties stores v, keeping the default (true) implicit.
func (s *Schema) SetAdditionalProperties(v bool) {
	if v {
		s.AdditionalProperties = nil
		return
	}
	s.AdditionalProperties = &v
}

// RequireAll marks every declared property as required, in property order.
func (s *Schema) RequireAll() {
	if s.Properties == nil {
		return
	}
	s.Required = cloneSlice(s.Properties.keys)
}

// Check enforces the structural invariants of s and all of its children:
// items iff array, properties iff object, required names declared in properties.
func (s *Schema) Check() error {
	return s.check("$")
}

func (s *Schema) check(path string) error {
	if s.Kind != "" && !s.Kind.Valid() {
		return fmt.Errorf("%s: unknown type %q", path, s.Kind)
	}
	if s.Items != nil && s.Kind != KindArray {
		return fmt.Errorf("%s: items is only allowed on arrays", path)
	}
	if s.Properties != nil && s.Kind != KindObject {
		return fmt.Errorf("%s: properties is only allowed on objects", path)
	}
	if len(s.Required) > 0 && s.Kind != KindObject {
		return fmt.Errorf("%s: required is only allowed on objects", path)
	}
	for _, name := range s.Required {
		if !s.Properties.Has(name) {
			return fmt.Errorf("%s: required property %q is not defined", path, name)
		}
	}
	if s.Items != nil {
		if err := s.Items.check(path + "[]"); err != nil {
			return err
		}
	}
	var err error
	s.Properties.Each(func(name string, child *Schema) bool {
		err = child.check(path + "." + name)
		return err == nil
	})
	return err
}

// Clone returns a deep copy of s. Literal values in Examples, Enum and
// Default are shared; they are never mutated.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	out.Properties = s.Properties.Clone()
	out.Items = s.Items.Clone()
	out.Required = cloneSlice(s.Required)
	out.Examples = cloneSlice(s.Examples)
	out.Enum = cloneSlice(s.Enum)
	out.AdditionalProperties = clonePtr(s.AdditionalProperties)
	out.MinItems = clonePtr(s.MinItems)
	out.MaxItems = clonePtr(s.MaxItems)
	out.MinLength = clonePtr(s.MinLength)
	out.MaxLength = clonePtr(s.MaxLength)
	out.Minimum = clonePtr(s.Minimum)
	out.Maximum = clonePtr(s.Maximum)
	return &out
}

// UnmarshalJSON accepts additionalProperties given as a schema object,
// which is read as true.
func (s *Schema) UnmarshalJSON(data []byte) error {
	type plain Schema
	var raw struct {
		plain
		AdditionalProperties json.RawMessage `json:"additionalProperties,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Schema(raw.plain)
	s.AdditionalProperties = nil
	if len(raw.AdditionalProperties) > 0 {
		var allowed bool
		if err := json.Unmarshal(raw.AdditionalProperties, &allowed); err == nil {
			s.SetAdditionalProperties(allowed)
		}
	}
	return nil
}

// Parse decodes schema JSON text.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// MarshalIndent renders s with two-space indentation, properties in order.
func (s *Schema) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
