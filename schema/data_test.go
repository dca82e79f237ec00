package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/BaSui01/jsonsage/types"
)

const personSchema = `{
	"type":"object",
	"properties":{"name":{"type":"string"},"age":{"type":"number"},"tags":{"type":"array"}},
	"required":["name","age"]
}`

func mustParse(t testing.TB, text string) *Schema {
	t.Helper()
	s, err := Parse([]byte(text))
	require.NoError(t, err)
	return s
}

func TestValidateData(t *testing.T) {
	s := mustParse(t, personSchema)

	tests := []struct {
		name string
		data string
		want []string
	}{
		{name: "valid", data: `{"name":"张三","age":25}`},
		{name: "missing age", data: `{"name":"a"}`, want: []string{`missing required field "age"`}},
		{
			name: "missing before mismatch",
			data: `{"age":"old","tags":{}}`,
			want: []string{
				`missing required field "name"`,
				`field "age": expected number, got string`,
				`field "tags": expected array, got object`,
			},
		},
		{name: "extra fields allowed", data: `{"name":"a","age":1,"x":true}`},
		{name: "non-object root", data: `[1,2]`, want: []string{"expected object, got array"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ValidateData(tt.data, s)
			require.NoError(t, err)
			if len(tt.want) == 0 {
				assert.True(t, res.Valid)
				assert.Empty(t, res.Errors)
				return
			}
			assert.False(t, res.Valid)
			assert.Equal(t, tt.want, res.Errors)
		})
	}
}

func TestValidateData_InvalidJSON(t *testing.T) {
	_, err := ValidateData(`{ "name": "张三", }`, Empty())
	require.Error(t, err)
	assert.True(t, types.IsInputError(err))
	assert.Contains(t, err.Error(), "Invalid JSON")
}

func TestValidateData_AdditionalPropertiesFalse(t *testing.T) {
	s := mustParse(t, `{"type":"object","properties":{"a":{"type":"integer"}},"additionalProperties":false}`)
	res, err := ValidateData(`{"a":1.5,"b":1,"c":2}`, s)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`field "a": expected integer, got number`,
		`unexpected field "b"`,
		`unexpected field "c"`,
	}, res.Errors)

	res, err = ValidateData(`{"a":2}`, s)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateValue_EmptySchemaAcceptsAnything(t *testing.T) {
	for _, v := range []any{nil, "x", true, []any{}, Object{}} {
		assert.True(t, ValidateValue(v, Empty()).Valid)
	}
}

func TestProperty_ValidateDataReportsEachMissingField(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		names := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,8}`), 1, 8, rapid.ID[string]).Draw(rt, "names")
		s := NewObject()
		for _, n := range names {
			s.Properties.Set(n, NewPrimitive(KindString))
		}
		s.RequireAll()

		present := Object{}
		var missing []string
		for _, n := range names {
			if rapid.Bool().Draw(rt, "present_"+n) {
				present = append(present, Member{Key: n, Value: "v"})
			} else {
				missing = append(missing, n)
			}
		}

		res := ValidateValue(present, s)
		assert.Equal(rt, len(missing) == 0, res.Valid)
		require.Len(rt, res.Errors, len(missing))
		for i, n := range missing {
			assert.Contains(rt, res.Errors[i], `"`+n+`"`)
		}
	})
}
