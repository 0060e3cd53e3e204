package extract

import (
	"strings"

	"github.com/leofalp/intake/core/schema"
)

// BuildPrompt renders the extraction prompt for s around source. Fields are
// listed in schema order with their descriptions.
func BuildPrompt(s schema.Schema, source string) string {
	var b strings.Builder

	b.WriteString("\nFrom the text below, extract these fields and return ONLY a valid JSON object with the exact keys shown below.\n\n")
	b.WriteString("Required fields:\n")
	for _, f := range s.Fields() {
		b.WriteString("- ")
		b.WriteString(f.Name)
		if f.Description != "" {
			b.WriteString(" (")
			b.WriteString(f.Description)
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	b.WriteString("\nDO NOT include markdown, explanation, or code.\n")
	b.WriteString("RETURN ONLY a pure JSON object as output.\n\n")
	b.WriteString("Input text:\n")
	b.WriteString(source)
	b.WriteString("\n")

	return b.String()
}
