package extract

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/leofalp/intake/core/schema"
)

func TestBuildPrompt_IntakeV1(t *testing.T) {
	want := `
From the text below, extract these fields and return ONLY a valid JSON object with the exact keys shown below.

Required fields:
- name (first name only)
- id_number (integer)
- age (integer)
- gender ("male", "female", or "other")
- nationality (string)
- consent (true/false)
- smoke (true/false)
- allergy (string, comma-separated if more than one)
- comments (string)

DO NOT include markdown, explanation, or code.
RETURN ONLY a pure JSON object as output.

Input text:
I am Ana.
`
	if diff := cmp.Diff(want, BuildPrompt(schema.IntakeV1, "I am Ana.")); diff != "" {
		t.Errorf("prompt mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildPrompt_FieldWithoutDescription(t *testing.T) {
	s := schema.New("t", "v1", schema.Field{Name: "code", Type: schema.TypeString})
	got := BuildPrompt(s, "x")
	if !strings.Contains(got, "- code\n") {
		t.Errorf("prompt = %q", got)
	}
}
