package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotObject is returned by [DecodeObject] when the input is valid JSON but
// not an object.
var ErrNotObject = errors.New("parse: JSON value is not an object")

// DecodeObject decodes content as a single JSON object. Numbers are kept as
// json.Number so integer-typed fields can be checked without float rounding.
// Trailing data after the object is rejected.
func DecodeObject(content string) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(content)))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid JSON: unexpected data after top-level value")
	}

	object, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w (got %T)", ErrNotObject, value)
	}

	return object, nil
}

// Unwrap replaces every {"type": ..., "value": ...} envelope in object with
// its value. Models sometimes echo the schema shape instead of plain data:
//
//	{"name": {"type": "string", "value": "Ana"}, "age": {"type": "integer", "value": 30}}
//
// becomes
//
//	{"name": "Ana", "age": 30}
//
// The input map is not modified.
func Unwrap(object map[string]any) map[string]any {
	unwrapped, ok := recursiveUnwrap(object).(map[string]any)
	if !ok {
		// The top level was itself an envelope around a non-object value.
		return object
	}
	return unwrapped
}

func recursiveUnwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if _, hasType := v["type"]; hasType {
			if value, hasValue := v["value"]; hasValue && len(v) == 2 {
				return recursiveUnwrap(value)
			}
		}

		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = recursiveUnwrap(val)
		}
		return result

	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = recursiveUnwrap(val)
		}
		return result

	default:
		return data
	}
}
