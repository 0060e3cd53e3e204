// Package parse isolates and decodes the JSON object embedded in raw model
// output. Language models frequently wrap the object in narrative prose,
// markdown code fences or trailing explanations, so the package applies a
// layered recovery strategy: a strict brace-window search ([Locate]), an
// opt-in repair pass backed by jsonrepair ([LocateLenient]) and unwrapping of
// schema-style {"type": ..., "value": ...} envelopes ([Unwrap]).
//
// [Locate] never fails. When nothing parseable is found it returns the empty
// object "{}", leaving it to schema validation to report what is missing.
package parse
