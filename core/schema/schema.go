package schema

import (
	"fmt"
	"slices"

	"github.com/leofalp/intake/internal/jsonschema"
)

// Type is the JSON type a field must hold.
type Type string

const (
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Field describes one key of a record contract.
type Field struct {
	Name        string
	Type        Type
	Required    bool
	Description string
	// Enum, when non-empty, lists the allowed string values.
	Enum []string
	// Min and Max, when set, are inclusive integer bounds.
	Min *int64
	Max *int64
}

// Schema is an ordered, immutable set of fields identified by name and version.
// Build it with [New]; the zero value has no fields and accepts any object.
type Schema struct {
	name    string
	version string
	fields  []Field
}

// New returns a schema owning copies of fields. It panics on duplicate or
// empty field names, since schemas are declared at init time.
func New(name, version string, fields ...Field) Schema {
	seen := make(map[string]struct{}, len(fields))
	copied := make([]Field, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			panic(fmt.Sprintf("schema %s/%s: field %d has no name", name, version, i))
		}
		if _, dup := seen[f.Name]; dup {
			panic(fmt.Sprintf("schema %s/%s: duplicate field %q", name, version, f.Name))
		}
		seen[f.Name] = struct{}{}
		f.Enum = slices.Clone(f.Enum)
		f.Min = cloneBound(f.Min)
		f.Max = cloneBound(f.Max)
		copied[i] = f
	}
	return Schema{name: name, version: version, fields: copied}
}

// Name returns the schema name.
func (s Schema) Name() string { return s.name }

// Version returns the schema version.
func (s Schema) Version() string { return s.version }

// ID returns "name/version".
func (s Schema) ID() string { return s.name + "/" + s.version }

// Fields returns a copy of the fields in declaration order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		f.Enum = slices.Clone(f.Enum)
		f.Min = cloneBound(f.Min)
		f.Max = cloneBound(f.Max)
		out[i] = f
	}
	return out
}

// Field returns the named field.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields() {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Required returns the names of required fields in declaration order.
func (s Schema) Required() []string {
	var names []string
	for _, f := range s.fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// JSONSchema renders the contract as a JSON Schema document.
func (s Schema) JSONSchema() *jsonschema.Schema {
	doc := &jsonschema.Schema{
		Schema:     jsonschema.Draft202012,
		ID:         s.ID(),
		Title:      s.name,
		Type:       "object",
		Required:   s.Required(),
		Properties: make(map[string]*jsonschema.Schema, len(s.fields)),
	}

	for _, f := range s.fields {
		prop := &jsonschema.Schema{
			Type:        string(f.Type),
			Description: f.Description,
		}
		for _, v := range f.Enum {
			prop.Enum = append(prop.Enum, v)
		}
		if f.Min != nil {
			prop.Minimum = jsonschema.Float(float64(*f.Min))
		}
		if f.Max != nil {
			prop.Maximum = jsonschema.Float(float64(*f.Max))
		}
		doc.Properties[f.Name] = prop
	}

	return doc
}

// Bound returns a pointer to v, for Field.Min and Field.Max.
func Bound(v int64) *int64 {
	return &v
}

func cloneBound(b *int64) *int64 {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// IntakeV1 is the patient intake contract.
var IntakeV1 = New("intake", "v1",
	Field{Name: "name", Type: TypeString, Required: true, Description: "first name only"},
	Field{Name: "id_number", Type: TypeInteger, Required: true, Description: "integer"},
	Field{Name: "age", Type: TypeInteger, Required: true, Description: "integer", Min: Bound(0), Max: Bound(150)},
	Field{Name: "gender", Type: TypeString, Required: true, Description: `"male", "female", or "other"`, Enum: []string{"male", "female", "other"}},
	Field{Name: "nationality", Type: TypeString, Required: true, Description: "string"},
	Field{Name: "consent", Type: TypeBoolean, Required: true, Description: "true/false"},
	Field{Name: "smoke", Type: TypeBoolean, Required: true, Description: "true/false"},
	Field{Name: "allergy", Type: TypeString, Required: true, Description: "string, comma-separated if more than one"},
	Field{Name: "comments", Type: TypeString, Description: "string"},
)
