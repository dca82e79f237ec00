package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Properties is an ordered mapping from property name to child schema.
// Iteration and JSON encoding follow insertion order. A nil *Properties is
// a valid, empty set for every read method.
type Properties struct {
	keys []string
	m    map[string]*Schema
}

// NewProperties returns an empty property set.
func NewProperties() *Properties {
	return &Properties{m: make(map[string]*Schema)}
}

// Set adds or replaces a property. Replacing keeps the original position.
func (p *Properties) Set(name string, s *Schema) {
	if p.m == nil {
		p.m = make(map[string]*Schema)
	}
	if _, ok := p.m[name]; !ok {
		p.keys = append(p.keys, name)
	}
	p.m[name] = s
}

// Get returns the child schema for name.
func (p *Properties) Get(name string) (*Schema, bool) {
	if p == nil {
		return nil, false
	}
	s, ok := p.m[name]
	return s, ok
}

// Has reports whether name is declared.
func (p *Properties) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Keys returns the property names in order. 非 nil 的空集合返回空切片而非 nil
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Each calls fn for every property in order until fn returns false.
func (p *Properties) Each(fn func(name string, s *Schema) bool) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		if !fn(k, p.m[k]) {
			return
		}
	}
}

// Clone deep-copies the set and every child schema.
func (p *Properties) Clone() *Properties {
	if p == nil {
		return nil
	}
	out := &Properties{
		keys: cloneSlice(p.keys),
		m:    make(map[string]*Schema, len(p.m)),
	}
	for k, v := range p.m {
		out.m[k] = v.Clone()
	}
	return out
}

// Equal reports whether both sets declare the same names in the same order
// with deeply equal children.
func (p *Properties) Equal(o *Properties) bool {
	if p.Len() != o.Len() {
		return false
	}
	if p.Len() == 0 {
		return (p == nil) == (o == nil)
	}
	if !reflect.DeepEqual(p.keys, o.keys) {
		return false
	}
	return reflect.DeepEqual(p.m, o.m)
}

// MarshalJSON encodes the properties as a JSON object in insertion order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(p.m[k])
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the source key order.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("properties must be a JSON object")
	}
	p.keys = nil
	p.m = make(map[string]*Schema)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected property key %v", tok)
		}
		child := new(Schema)
		if err := dec.Decode(child); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		p.Set(name, child)
	}
	_, err = dec.Token()
	return err
}
