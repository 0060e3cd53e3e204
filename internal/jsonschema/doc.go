// Package jsonschema provides the JSON Schema document representation used
// when a schema is exported, printed, or sent to a provider as a structured
// output hint.
//
// It only models the subset of JSON Schema needed for flat record contracts:
// types, required keys, enums, numeric bounds and descriptions.
package jsonschema
