package schema

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/BaSui01/jsonsage/types"
)

// ValidateData parses dataText and checks it against s at the root level.
// Unparsable data is an input error rather than a failed Result.
func ValidateData(dataText string, s *Schema) (Result, error) {
	v, err := DecodeValue([]byte(dataText))
	if err != nil {
		return Result{}, types.NewInvalidJSONError(err)
	}
	return ValidateValue(v, s), nil
}

// ValidateValue checks a decoded value against s. For object schemas it
// reports, in order: each missing required field (required order), each
// present property whose type does not match (properties order), and each
// undeclared field when additionalProperties is false. Nested values are
// only checked for their own type.
func ValidateValue(v any, s *Schema) Result {
	if s == nil || s.Kind == "" {
		return Passed()
	}
	if s.Kind != KindObject {
		if !matchesKind(v, s.Kind) {
			return Failed(fmt.Sprintf("expected %s, got %s", s.Kind, typeOf(v)))
		}
		return Passed()
	}

	obj, ok := asObject(v)
	if !ok {
		return Failed(fmt.Sprintf("expected object, got %s", typeOf(v)))
	}
	idx := obj.Index()

	var errs []string
	for _, name := range s.Required {
		if _, ok := idx[name]; !ok {
			errs = append(errs, fmt.Sprintf("missing required field %q", name))
		}
	}
	s.Properties.Each(func(name string, child *Schema) bool {
		val, ok := idx[name]
		if !ok || child == nil || child.Kind == "" {
			return true
		}
		if !matchesKind(val, child.Kind) {
			errs = append(errs, fmt.Sprintf("field %q: expected %s, got %s", name, child.Kind, typeOf(val)))
		}
		return true
	})
	if !s.AllowsAdditional() {
		for _, m := range obj {
			if !s.Properties.Has(m.Key) {
				errs = append(errs, fmt.Sprintf("unexpected field %q", m.Key))
			}
		}
	}
	return resultOf(errs)
}

func asObject(v any) (Object, bool) {
	switch t := v.(type) {
	case Object:
		return t, true
	case map[string]any:
		out := make(Object, 0, len(t))
		for k, val := range t {
			out = append(out, Member{Key: k, Value: val})
		}
		return out, true
	}
	return nil, false
}

func matchesKind(v any, k Kind) bool {
	switch k {
	case KindNull:
		return v == nil
	case KindString:
		_, ok := v.(string)
		return ok
	case KindBoolean:
		_, ok := v.(bool)
		return ok
	case KindNumber:
		_, ok := toFloat(v)
		return ok
	case KindInteger:
		f, ok := toFloat(v)
		return ok && f == math.Trunc(f) && !math.IsInf(f, 0)
	case KindArray:
		_, ok := v.([]any)
		return ok
	case KindObject:
		_, ok := asObject(v)
		return ok
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func typeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64:
		return "number"
	case []any:
		return "array"
	case Object, map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
