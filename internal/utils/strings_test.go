package utils

import (
	"strings"
	"testing"
)

func TestTruncateString(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		maxLen        int
		wantTruncated bool
	}{
		{name: "shorter than maxLen", input: "hello", maxLen: 10},
		{name: "exactly maxLen", input: "hello", maxLen: 5},
		{name: "longer than maxLen", input: "hello world", maxLen: 5, wantTruncated: true},
		{name: "zero maxLen uses default", input: strings.Repeat("a", DefaultMaxStringLength+1), wantTruncated: true},
		{name: "zero maxLen short input", input: "abc", maxLen: 0},
		{name: "negative maxLen uses default", input: strings.Repeat("b", DefaultMaxStringLength+1), maxLen: -1, wantTruncated: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got := TruncateString(testCase.input, testCase.maxLen)

			hasSuffix := strings.Contains(got, "... (truncated, total:")
			if hasSuffix != testCase.wantTruncated {
				t.Errorf("TruncateString(%q, %d) truncated=%v, want %v; got %q",
					testCase.input, testCase.maxLen, hasSuffix, testCase.wantTruncated, got)
			}
		})
	}
}

func TestTruncateString_ContentPreserved(t *testing.T) {
	got := TruncateString("abcdefghij", 4)
	if got != "abcd... (truncated, total: 10 chars)" {
		t.Errorf("TruncateString() = %q", got)
	}
}

func TestTruncateStringDefault(t *testing.T) {
	if got := TruncateStringDefault("short"); got != "short" {
		t.Errorf("TruncateStringDefault() = %q", got)
	}

	long := strings.Repeat("x", DefaultMaxStringLength+10)
	if got := TruncateStringDefault(long); !strings.HasSuffix(got, "(truncated, total: 510 chars)") {
		t.Errorf("TruncateStringDefault() did not truncate: %q", got[len(got)-40:])
	}
}
