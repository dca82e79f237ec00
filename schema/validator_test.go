package schema

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		valid   bool
		errPart string
	}{
		{name: "minimal object", text: `{"type":"object","properties":{}}`, valid: true},
		{name: "primitive", text: `{"type":"string"}`, valid: true},
		{name: "integer accepted", text: `{"type":"integer","minimum":0}`, valid: true},
		{name: "malformed trailing comma", text: `{"type":"object",}`, errPart: "JSON"},
		{name: "empty text", text: ``, errPart: "JSON"},
		{name: "trailing data", text: `{"type":"object"} {}`, errPart: "JSON"},
		{name: "not an object", text: `["type"]`, errPart: "JSON object"},
		{name: "missing type", text: `{"properties":{}}`, errPart: "'type'"},
		{name: "unknown type", text: `{"type":"invalid-type"}`, errPart: "'type' must be one of"},
		{name: "type not a string", text: `{"type":["string","null"]}`, errPart: "'type' must be one of"},
		{name: "properties not object", text: `{"type":"object","properties":[]}`, errPart: "'properties'"},
		{name: "items not object", text: `{"type":"array","items":"string"}`, errPart: "'items'"},
		{name: "required not array", text: `{"type":"object","required":"name"}`, errPart: "required"},
		{name: "required not strings", text: `{"type":"object","properties":{"a":{"type":"string"}},"required":[1]}`, errPart: "required"},
		{name: "required undefined", text: `{"type":"object","properties":{},"required":["name"]}`, errPart: "required"},
		{name: "required without properties", text: `{"type":"object","required":["name"]}`, errPart: `"name"`},
		{name: "required defined", text: `{"type":"object","properties":{"name":{"type":"string"}},"required":["name"]}`, valid: true},
		{name: "nested left alone", text: `{"type":"object","properties":{"a":{"nope":1}}}`, valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateSchema(tt.text)
			assert.Equal(t, tt.valid, res.Valid)
			if tt.valid {
				assert.NotNil(t, res.Errors)
				assert.Empty(t, res.Errors)
				return
			}
			require.Len(t, res.Errors, 1, "one aggregated error per failed check")
			assert.Contains(t, res.Errors[0], tt.errPart)
		})
	}
}

func TestValidateSchema_AggregatesUndefinedRequired(t *testing.T) {
	res := ValidateSchema(`{"type":"object","properties":{"a":{"type":"string"}},"required":["a","b","c"]}`)
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, `required properties not defined in properties: "b", "c"`, res.Errors[0])
}

func TestValidateSchemaWith_Recursive(t *testing.T) {
	text := `{
		"type":"object",
		"properties":{
			"a":{"nope":1},
			"b":{"type":"array","items":{"type":"bogus"}},
			"c":{"type":"array","items":{}},
			"d":{"type":"object","properties":{"e":{"type":"object","required":["x"]}}}
		}
	}`

	shallow := ValidateSchema(text)
	assert.True(t, shallow.Valid)

	deep := ValidateSchemaWith(text, ValidatorOptions{Recursive: true})
	require.False(t, deep.Valid)
	assert.Equal(t, []string{
		"$.a: schema must have required property 'type'",
		"$.b[]: 'type' must be one of: " + kindList(),
		`$.d.e: required properties not defined in properties: "x"`,
	}, deep.Errors)
}

func TestValidateSchema_LargeSchemaIsLinear(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"type":"object","properties":{`)
	const n = 20000
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `"p%d":{"type":"string"}`, i)
	}
	b.WriteString(`},"required":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `"p%d"`, i)
	}
	b.WriteString(`]}`)

	start := time.Now()
	res := ValidateSchemaWith(b.String(), ValidatorOptions{Recursive: true})
	assert.True(t, res.Valid)
	assert.Less(t, time.Since(start), 5*time.Second)
}
