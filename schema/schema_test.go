package schema

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_ParseKeepsOrderAndConstraints(t *testing.T) {
	text := `{
		"$schema":"http://json-schema.org/draft-07/schema#",
		"type":"object",
		"title":"User",
		"properties":{
			"zeta":{"type":"string","format":"email","pattern":"^.+@.+$","minLength":3,"maxLength":64},
			"alpha":{"type":"integer","minimum":0,"maximum":150},
			"role":{"type":"string","enum":["admin","user"],"default":"user"}
		},
		"required":["zeta"],
		"additionalProperties":false,
		"x-unknown":true
	}`
	s := mustParse(t, text)

	assert.Equal(t, []string{"zeta", "alpha", "role"}, s.Properties.Keys())
	assert.False(t, s.AllowsAdditional())
	zeta, _ := s.Properties.Get("zeta")
	assert.Equal(t, "email", zeta.Format)
	require.NotNil(t, zeta.MaxLength)
	assert.Equal(t, 64, *zeta.MaxLength)
	alpha, _ := s.Properties.Get("alpha")
	assert.Equal(t, KindInteger, alpha.Kind)
	require.NoError(t, s.Check())

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "x-unknown")
	again := mustParse(t, string(out))
	assert.Empty(t, cmp.Diff(s, again))
}

func TestSchema_AdditionalPropertiesSchemaReadsAsTrue(t *testing.T) {
	s := mustParse(t, `{"type":"object","additionalProperties":{"type":"string"}}`)
	assert.Nil(t, s.AdditionalProperties)
	assert.True(t, s.AllowsAdditional())

	s.SetAdditionalProperties(false)
	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","additionalProperties":false}`, string(out))
}

func TestSchema_Check(t *testing.T) {
	withItems := NewPrimitive(KindString)
	withItems.Items = Empty()

	badRequired := NewObject()
	badRequired.Required = []string{"missing"}

	nested := NewObject()
	inner := NewObject()
	inner.Required = []string{"x"}
	nested.Properties.Set("inner", inner)

	tests := []struct {
		name    string
		s       *Schema
		wantErr string
	}{
		{"object ok", NewObject(), ""},
		{"array ok", NewArray(nil), ""},
		{"items on string", withItems, "items is only allowed on arrays"},
		{"properties on array", &Schema{Kind: KindArray, Properties: NewProperties()}, "properties is only allowed on objects"},
		{"undefined required", badRequired, `required property "missing"`},
		{"nested", nested, "$.inner"},
		{"unknown kind", &Schema{Kind: "date"}, "unknown type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Check()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSchema_CloneIsDeep(t *testing.T) {
	s := mustParse(t, `{"type":"object","properties":{"a":{"type":"array","items":{"type":"string"}}},"required":["a"]}`)
	c := s.Clone()
	require.Empty(t, cmp.Diff(s, c))

	a, _ := c.Properties.Get("a")
	a.Items.Kind = KindNumber
	c.Required[0] = "b"
	c.Properties.Set("z", NewNull())

	orig, _ := s.Properties.Get("a")
	assert.Equal(t, KindString, orig.Items.Kind)
	assert.Equal(t, []string{"a"}, s.Required)
	assert.Equal(t, 1, s.Properties.Len())
}

func TestProperties_SetReplaceKeepsPosition(t *testing.T) {
	p := NewProperties()
	p.Set("b", NewNull())
	p.Set("a", NewNull())
	p.Set("b", NewPrimitive(KindString))

	assert.Equal(t, []string{"b", "a"}, p.Keys())
	b, _ := p.Get("b")
	assert.Equal(t, KindString, b.Kind)

	var nilProps *Properties
	assert.Equal(t, 0, nilProps.Len())
	assert.False(t, nilProps.Has("a"))
	assert.True(t, nilProps.Equal(nil))
	assert.False(t, nilProps.Equal(NewProperties()))
}

func TestProperties_KeysOfEmptySet(t *testing.T) {
	assert.Equal(t, []string{}, NewProperties().Keys())

	s, err := InferJSON([]byte(`{}`), InferOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{}, s.Properties.Keys())

	var nilProps *Properties
	assert.Nil(t, nilProps.Keys())
}

func TestSchema_RequireAll(t *testing.T) {
	s, err := InferJSON([]byte(`{"b":1,"a":"x"}`), InferOptions{})
	require.NoError(t, err)
	s.RequireAll()
	assert.Equal(t, []string{"b", "a"}, s.Required)
	assert.NoError(t, s.Check())
}
