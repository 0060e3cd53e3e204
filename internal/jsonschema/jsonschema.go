package jsonschema

import (
	"encoding/json"
)

// Schema represents the structure of a JSON Schema document.
type Schema struct {
	// Schema is the dialect URI, set on root documents only.
	Schema string `json:"$schema,omitempty"`
	// ID identifies the document, typically including a version.
	ID string `json:"$id,omitempty"`
	// Title is a short human-readable name.
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	// Type specifies the data type (e.g., "object", "string", "integer", "boolean").
	Type     string   `json:"type,omitempty"`
	Required []string `json:"required,omitempty"`
	// Properties of an object, each with its own schema.
	Properties map[string]*Schema `json:"properties,omitempty"`
	// Enum contains the list of allowed values.
	Enum []any `json:"enum,omitempty"`
	// Minimum and Maximum are inclusive numeric bounds.
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`
	// AdditionalProperties controls whether properties not defined in Properties are allowed.
	AdditionalProperties any `json:"additionalProperties,omitempty"`
}

// Draft202012 is the dialect URI written on exported root documents.
const Draft202012 = "https://json-schema.org/draft/2020-12/schema"

// Float returns a pointer to v, for Minimum and Maximum.
func Float(v float64) *float64 {
	return &v
}

// String returns the indented JSON encoding of the schema. On marshalling
// failure it returns a JSON-formatted error string instead.
func (s *Schema) String() string {
	encoded, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{\"error\": \"failed to marshal schema: " + err.Error() + "\"}"
	}
	return string(encoded)
}
