// ABOUTME: Primitive is the tagged value type (string|int|float|bool) that flows
// ABOUTME: through variable scopes and job parameters; this file owns its JSON decoding.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Primitive holds a string, int64, float64, or bool. Represented as `any`
// rather than a hand-rolled sum type because every boundary this value
// crosses (JSON, the resolver, handler parameters) is itself dynamically
// typed; a wrapper struct would just move the type switch, not remove it.
type Primitive = any

// IsPrimitive reports whether v is one of the four primitive kinds.
func IsPrimitive(v any) bool {
	switch v.(type) {
	case string, int64, float64, bool:
		return true
	default:
		return false
	}
}

// decodePrimitive turns a JSON scalar token into a Primitive, preserving
// the int/float distinction that encoding/json's default float64-for-all-
// numbers behavior would erase.
func decodePrimitive(raw json.RawMessage) (Primitive, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var tok any
	if err := dec.Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode primitive: %w", err)
	}
	return normalizeToken(tok)
}

func normalizeToken(tok any) (Primitive, error) {
	switch v := tok.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("decode numeric primitive %q: %w", v.String(), err)
		}
		return f, nil
	case string, bool:
		return v, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("value of type %T is not a primitive", tok)
	}
}

// encodePrimitive renders a Primitive back to its JSON token.
func encodePrimitive(v Primitive) (json.RawMessage, error) {
	return json.Marshal(v)
}
