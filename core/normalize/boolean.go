package normalize

import (
	"regexp"
	"strings"
)

// Rule maps a normalized phrase to a boolean when it matches.
type Rule struct {
	// Name identifies the rule in logs and tests.
	Name string
	// Value is returned when the rule matches.
	Value bool

	exact   map[string]struct{}
	pattern *regexp.Regexp
}

// Matches reports whether the normalized text satisfies the rule.
func (r Rule) Matches(text string) bool {
	if r.pattern != nil {
		return r.pattern.MatchString(text)
	}
	_, ok := r.exact[text]
	return ok
}

// Exact builds a rule matching any of phrases exactly. Phrases are passed
// through [NormalizeText] so table entries and inputs are compared in the same
// form ("non-smoker" is stored as "nonsmoker").
func Exact(name string, value bool, phrases ...string) Rule {
	exact := make(map[string]struct{}, len(phrases))
	for _, phrase := range phrases {
		exact[NormalizeText(phrase)] = struct{}{}
	}
	return Rule{Name: name, Value: value, exact: exact}
}

// Pattern builds a rule matching a regular expression against the normalized
// text. It panics if expr does not compile, like regexp.MustCompile.
func Pattern(name string, value bool, expr string) Rule {
	return Rule{Name: name, Value: value, pattern: regexp.MustCompile(expr)}
}

// RuleTable is an ordered list of rules evaluated first-match-wins, with a
// default for text no rule matches.
type RuleTable struct {
	Rules   []Rule
	Default bool
}

// Match evaluates value against the table. Booleans are returned unchanged,
// any other non-string value yields false, and strings are normalized before
// matching. Match never fails.
func (t RuleTable) Match(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		text := NormalizeText(v)
		for _, rule := range t.Rules {
			if rule.Matches(text) {
				return rule.Value
			}
		}
		return t.Default
	default:
		return false
	}
}

// With returns a copy of the table with rules appended after the existing ones.
func (t RuleTable) With(rules ...Rule) RuleTable {
	combined := make([]Rule, 0, len(t.Rules)+len(rules))
	combined = append(combined, t.Rules...)
	combined = append(combined, rules...)
	return RuleTable{Rules: combined, Default: t.Default}
}

// DefaultBooleanRules covers the yes/no and smoking phrasings seen in intake
// free text.
var DefaultBooleanRules = RuleTable{
	Rules: []Rule{
		Exact("affirmative", true, "true", "yes", "y", "1", "smoker", "i smoke", "yes i smoke", "i am a smoker"),
		Exact("negative", false, "false", "no", "n", "0", "non-smoker", "never smoked", "does not smoke"),
		Pattern("i do not smoke", false, `\bi\s+do\s+not\s+smoke\b`),
		Pattern("i am not a smoker", false, `\bi\s+am\s+not\s+a\s+smoker\b`),
		Pattern("i smoke", true, `\bi\s+smoke\b`),
	},
	Default: false,
}

// ToBoolean maps value to a boolean using [DefaultBooleanRules].
func ToBoolean(value any) bool {
	return DefaultBooleanRules.Match(value)
}

// NormalizeText trims, lower-cases and strips ASCII punctuation from s.
func NormalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if isASCIIPunct(r) {
			return -1
		}
		return r
	}, s)
}

func isASCIIPunct(r rune) bool {
	return (r >= '!' && r <= '/') || (r >= ':' && r <= '@') || (r >= '[' && r <= '`') || (r >= '{' && r <= '~')
}
