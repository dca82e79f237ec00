package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidatorOptions controls meta-schema validation.
type ValidatorOptions struct {
	// Recursive also checks every nested properties and items schema.
	// Nested nodes may be the empty schema {}; all others need a type.
	Recursive bool
}

// ValidateSchema checks schema text against the minimal meta-schema:
// a JSON object with a known "type", well-formed "properties" and a
// "required" list whose names are all declared. Only the root is checked.
// It never panics; every problem is reported in the Result, one message
// per failed check.
func ValidateSchema(text string) Result {
	return ValidateSchemaWith(text, ValidatorOptions{})
}

// ValidateSchemaWith is ValidateSchema with options.
func ValidateSchemaWith(text string, opts ValidatorOptions) Result {
	v, err := DecodeValue([]byte(text))
	if err != nil {
		return Failed("invalid JSON: " + err.Error())
	}
	if !opts.Recursive {
		if msg := checkNode(v, true); msg != "" {
			return Failed(msg)
		}
		return Passed()
	}
	var errs []string
	walkNode(v, "$", true, &errs)
	return resultOf(errs)
}

func walkNode(v any, path string, root bool, errs *[]string) {
	if msg := checkNode(v, root); msg != "" {
		if root {
			*errs = append(*errs, msg)
		} else {
			*errs = append(*errs, path+": "+msg)
		}
		return
	}
	obj := v.(Object)
	if props, ok := obj.Get("properties"); ok {
		for _, m := range props.(Object) {
			walkNode(m.Value, path+"."+m.Key, false, errs)
		}
	}
	if items, ok := obj.Get("items"); ok {
		walkNode(items, path+"[]", false, errs)
	}
}

// checkNode returns the message of the first failing check, or "".
func checkNode(v any, root bool) string {
	obj, ok := v.(Object)
	if !ok {
		return "schema must be a JSON object"
	}
	if !root && len(obj) == 0 {
		return ""
	}
	idx := obj.Index()

	t, ok := idx["type"]
	if !ok {
		return "schema must have required property 'type'"
	}
	name, ok := t.(string)
	if !ok || !Kind(name).Valid() {
		return fmt.Sprintf("'type' must be one of: %s", kindList())
	}

	var declared Object
	if p, ok := idx["properties"]; ok {
		declared, ok = p.(Object)
		if !ok {
			return "'properties' must be an object"
		}
	}
	if it, ok := idx["items"]; ok {
		if _, ok := it.(Object); !ok {
			return "'items' must be an object"
		}
	}

	r, ok := idx["required"]
	if !ok {
		return ""
	}
	list, ok := r.([]any)
	if !ok {
		return "'required' must be an array of strings"
	}
	defined := declared.Index()
	var missing []string
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return "'required' must be an array of strings"
		}
		if _, ok := defined[s]; !ok {
			missing = append(missing, strconv.Quote(s))
		}
	}
	if len(missing) > 0 {
		return "required properties not defined in properties: " + strings.Join(missing, ", ")
	}
	return ""
}
