package normalize

import (
	"maps"
	"slices"
	"strings"
)

// Normalizer canonicalizes a decoded record before validation.
type Normalizer struct {
	// BooleanFields are coerced through Booleans; a missing field becomes false.
	BooleanFields []string
	// LowerFields are lower-cased when they hold a string.
	LowerFields []string
	// ListFields are joined with ListSeparator when they hold only strings.
	ListFields []string
	// ListSeparator defaults to ", ".
	ListSeparator string
	// Booleans is the rule table applied to BooleanFields.
	Booleans RuleTable
}

// Intake is the normalizer for intake records.
var Intake = &Normalizer{
	BooleanFields: []string{"consent", "smoke"},
	LowerFields:   []string{"gender"},
	ListFields:    []string{"allergy"},
	ListSeparator: ", ",
	Booleans:      DefaultBooleanRules,
}

// Record normalizes object with the [Intake] normalizer.
func Record(object map[string]any) map[string]any {
	return Intake.Normalize(object)
}

// Normalize returns a new map with lower-cased keys and the configured field
// coercions applied. Fields not named by the normalizer pass through
// unchanged. When two keys collide after lower-casing, the key that was
// already lower-case wins; otherwise the key that sorts first wins ("NAME"
// before "Name"). The input map is not modified.
func (n *Normalizer) Normalize(object map[string]any) map[string]any {
	out := make(map[string]any, len(object))
	for _, key := range slices.Sorted(maps.Keys(object)) {
		lower := strings.ToLower(key)
		if _, taken := out[lower]; taken && key != lower {
			continue
		}
		out[lower] = object[key]
	}

	for _, field := range n.BooleanFields {
		value, ok := out[field]
		if !ok {
			value = false
		}
		out[field] = n.Booleans.Match(value)
	}

	for _, field := range n.LowerFields {
		if s, ok := out[field].(string); ok {
			out[field] = strings.ToLower(s)
		}
	}

	separator := n.ListSeparator
	if separator == "" {
		separator = ", "
	}
	for _, field := range n.ListFields {
		if joined, ok := joinStrings(out[field], separator); ok {
			out[field] = joined
		}
	}

	return out
}

// joinStrings joins value when it is a list made only of strings.
func joinStrings(value any, separator string) (string, bool) {
	var items []string
	switch v := value.(type) {
	case []string:
		items = v
	case []any:
		items = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return "", false
			}
			items = append(items, s)
		}
	default:
		return "", false
	}
	return strings.Join(items, separator), true
}
