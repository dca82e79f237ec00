package schema

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/BaSui01/jsonsage/types"
)

func TestInferJSON_Shapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "primitives keep source order",
			in:   `{"name":"a","age":3,"ok":true,"gone":null}`,
			want: `{"type":"object","properties":{"name":{"type":"string"},"age":{"type":"number"},"ok":{"type":"boolean"},"gone":{"type":"null"}}}`,
		},
		{
			name: "empty array gets empty items",
			in:   `{"tags":[]}`,
			want: `{"type":"object","properties":{"tags":{"type":"array","items":{}}}}`,
		},
		{
			name: "array items from first element only",
			in:   `{"mixed":[1,"two",{"three":3}]}`,
			want: `{"type":"object","properties":{"mixed":{"type":"array","items":{"type":"number"}}}}`,
		},
		{
			name: "nested objects",
			in:   `{"user":{"address":{"city":"x"}},"list":[{"id":1}]}`,
			want: `{"type":"object","properties":{"user":{"type":"object","properties":{"address":{"type":"object","properties":{"city":{"type":"string"}}}}},"list":{"type":"array","items":{"type":"object","properties":{"id":{"type":"number"}}}}}}`,
		},
		{
			name: "empty object",
			in:   `{}`,
			want: `{"type":"object","properties":{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := InferJSON([]byte(tt.in), InferOptions{})
			require.NoError(t, err)
			got, err := json.Marshal(s)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
			assert.Equal(t, tt.want, string(got), "property order must follow the input")
		})
	}
}

func TestInferJSON_Examples(t *testing.T) {
	s, err := InferJSON([]byte(`{"name":"alice","n":1.5,"list":["x"],"obj":{"b":false},"nil":null}`), InferOptions{IncludeExamples: true})
	require.NoError(t, err)

	name, _ := s.Properties.Get("name")
	assert.Equal(t, []any{"alice"}, name.Examples)
	n, _ := s.Properties.Get("n")
	assert.Equal(t, []any{json.Number("1.5")}, n.Examples)
	list, _ := s.Properties.Get("list")
	assert.Nil(t, list.Examples)
	assert.Equal(t, []any{"x"}, list.Items.Examples)
	obj, _ := s.Properties.Get("obj")
	assert.Nil(t, obj.Examples)
	nul, _ := s.Properties.Get("nil")
	assert.Nil(t, nul.Examples)
}

func TestInfer_RootMustBeObject(t *testing.T) {
	for _, in := range []string{`[]`, `[{"a":1}]`, `"text"`, `1`, `null`, `true`} {
		t.Run(in, func(t *testing.T) {
			_, err := InferJSON([]byte(in), InferOptions{})
			require.Error(t, err)
			assert.True(t, types.IsInputError(err))
			assert.Contains(t, err.Error(), "root must be an object")
		})
	}
}

func TestInferJSON_InvalidJSON(t *testing.T) {
	_, err := InferJSON([]byte(`{"name": "x",}`), InferOptions{})
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidJSON, types.GetErrorCode(err))
}

func TestInfer_MapRootAndFallback(t *testing.T) {
	type custom struct{ X int }
	s, err := Infer(map[string]any{"b": custom{1}, "a": 2}, InferOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.Properties.Keys())
	b, _ := s.Properties.Get("b")
	assert.Equal(t, KindString, b.Kind)
	a, _ := s.Properties.Get("a")
	assert.Equal(t, KindNumber, a.Kind)
}

// 随机 JSON 值生成器，深度受限
func genValue(depth int) *rapid.Generator[any] {
	gens := []*rapid.Generator[any]{
		rapid.Just[any](nil),
		rapid.Map(rapid.String(), func(s string) any { return s }),
		rapid.Map(rapid.Bool(), func(b bool) any { return b }),
		rapid.Map(rapid.Float64Range(-1e6, 1e6), func(f float64) any {
			return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
		}),
	}
	if depth > 0 {
		gens = append(gens,
			rapid.Map(rapid.SliceOfN(genValue(depth-1), 0, 3), func(a []any) any { return a }),
			rapid.Map(genObject(depth-1), func(o Object) any { return o }),
		)
	}
	return rapid.OneOf(gens...)
}

func genObject(depth int) *rapid.Generator[Object] {
	return rapid.Custom(func(t *rapid.T) Object {
		keys := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,6}`), 0, 4, rapid.ID[string]).Draw(t, "keys")
		obj := make(Object, 0, len(keys))
		for _, k := range keys {
			obj = append(obj, Member{Key: k, Value: genValue(depth).Draw(t, "value")})
		}
		return obj
	})
}

func TestProperty_InferPrimitiveKind(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := genValue(0).Draw(rt, "v")
		s, err := Infer(Object{{Key: "v", Value: v}}, InferOptions{})
		require.NoError(rt, err)
		child, ok := s.Properties.Get("v")
		require.True(rt, ok)
		assert.Equal(rt, typeOf(v), string(child.Kind))
	})
}

func TestProperty_InferArrayUsesFirstElement(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		arr := rapid.SliceOfN(genValue(2), 0, 4).Draw(rt, "arr")
		s, err := Infer(Object{{Key: "a", Value: arr}}, InferOptions{})
		require.NoError(rt, err)
		child, _ := s.Properties.Get("a")
		require.Equal(rt, KindArray, child.Kind)
		if len(arr) == 0 {
			assert.Empty(rt, cmp.Diff(Empty(), child.Items))
			return
		}
		assert.Empty(rt, cmp.Diff(inferValue(arr[0], InferOptions{}), child.Items))
	})
}

func TestProperty_InferObjectKeys(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		obj := genObject(2).Draw(rt, "obj")
		opts := InferOptions{IncludeExamples: rapid.Bool().Draw(rt, "examples")}
		s, err := Infer(obj, opts)
		require.NoError(rt, err)

		keys := make([]string, len(obj))
		for i, m := range obj {
			keys[i] = m.Key
			child, ok := s.Properties.Get(m.Key)
			require.True(rt, ok)
			assert.Empty(rt, cmp.Diff(inferValue(m.Value, opts), child))
		}
		assert.Equal(rt, keys, s.Properties.Keys())
	})
}

func TestProperty_InferredSchemaAcceptsItsExample(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		obj := genObject(2).Draw(rt, "obj")
		s, err := Infer(obj, InferOptions{})
		require.NoError(rt, err)
		require.NoError(rt, s.Check())

		text, err := json.Marshal(s)
		require.NoError(rt, err)
		assert.True(rt, ValidateSchemaWith(string(text), ValidatorOptions{Recursive: true}).Valid)

		data, err := json.Marshal(obj)
		require.NoError(rt, err)
		res, err := ValidateData(string(data), s)
		require.NoError(rt, err)
		assert.True(rt, res.Valid, "errors: %v", res.Errors)
	})
}
