// Package mcpserver exposes the intake form service as Model Context
// Protocol tools:
//
//   - intake_extract: extract a patient record from free text, markdown or HTML
//   - intake_save: store a completed form
//   - intake_schema: the JSON Schema the extractor validates against
//
// Tool failures, including exhausted extractions, are reported as tool
// errors carrying the user-facing message rather than protocol errors.
package mcpserver
