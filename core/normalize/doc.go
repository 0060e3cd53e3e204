// Package normalize coerces loosely typed model output into the canonical
// shapes expected by schema validation.
//
// Boolean-like fields are mapped through an ordered [RuleTable]: exact-match
// sets first, then word-boundary patterns, then a fail-safe default. New
// phrasings are supported by appending rules, not by adding branches.
package normalize
