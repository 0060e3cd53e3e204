package parse

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// EmptyObject is returned by the locators when no parseable JSON is found.
const EmptyObject = "{}"

// Locate returns the largest syntactically valid JSON span of text that opens
// at the first '{' and closes at a '}'.
//
// The window starts at the first '{' and the last '}'. While the window does
// not parse, its end moves back to the previous '}' before the current end.
// The search therefore performs at most one validation per '}' in text. When
// no window parses, or text has no braces at all, EmptyObject is returned.
//
// The result may span several unrelated objects when the text between them
// happens to be valid JSON; callers must treat it as best effort, not as a
// minimal span.
func Locate(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	for start != -1 && end != -1 && end > start {
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate
		}
		end = strings.LastIndex(text[:end], "}")
	}

	return EmptyObject
}

// LocateLenient behaves like [Locate] but, when the strict search finds
// nothing, repairs the window from the first '{' to the last '}' (or to the
// end of text if no '}' follows) with jsonrepair. The repaired text is only
// accepted when it decodes to a JSON object; otherwise EmptyObject is returned.
func LocateLenient(text string) string {
	if located := Locate(text); located != EmptyObject {
		return located
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return EmptyObject
	}

	window := text[start:]
	if end := strings.LastIndex(window, "}"); end != -1 {
		window = window[:end+1]
	}

	repaired, err := jsonrepair.JSONRepair(window)
	if err != nil {
		return EmptyObject
	}

	if _, err := DecodeObject(repaired); err != nil {
		return EmptyObject
	}

	return repaired
}
