package schema

import (
	"encoding/json"
	"sort"

	"github.com/BaSui01/jsonsage/types"
)

// InferOptions controls schema inference.
type InferOptions struct {
	// IncludeExamples records each primitive value as a one-element examples list.
	IncludeExamples bool
}

// Infer derives a schema from a decoded example value. The root must be an
// object (Object or map[string]any); otherwise an input error is returned.
//
// Array items are inferred from the first element only. Later elements are
// not inspected, so heterogeneous arrays are described by their head.
func Infer(v any, opts InferOptions) (*Schema, error) {
	switch v.(type) {
	case Object, map[string]any:
		return inferValue(v, opts), nil
	default:
		return nil, types.NewInputError("root must be an object")
	}
}

// InferJSON decodes data with DecodeValue and infers its schema.
func InferJSON(data []byte, opts InferOptions) (*Schema, error) {
	v, err := DecodeValue(data)
	if err != nil {
		return nil, types.NewInvalidJSONError(err)
	}
	return Infer(v, opts)
}

func inferValue(v any, opts InferOptions) *Schema {
	switch t := v.(type) {
	case nil:
		return NewNull()
	case string:
		return primitive(KindString, t, opts)
	case bool:
		return primitive(KindBoolean, t, opts)
	case json.Number, float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return primitive(KindNumber, t, opts)
	case []any:
		if len(t) == 0 {
			return NewArray(Empty())
		}
		return NewArray(inferValue(t[0], opts))
	case Object:
		s := NewObject()
		for _, m := range t {
			s.Properties.Set(m.Key, inferValue(m.Value, opts))
		}
		return s
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		s := NewObject()
		for _, k := range keys {
			s.Properties.Set(k, inferValue(t[k], opts))
		}
		return s
	default:
		return NewPrimitive(KindString)
	}
}

func primitive(kind Kind, v any, opts InferOptions) *Schema {
	s := NewPrimitive(kind)
	if opts.IncludeExamples {
		s.Examples = []any{v}
	}
	return s
}
