package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// SourceFormat tells how the free-text input is encoded.
type SourceFormat string

const (
	FormatText     SourceFormat = "text"
	FormatMarkdown SourceFormat = "markdown"
	FormatHTML     SourceFormat = "html"
	// FormatURL means the input is a page address; it requires a [Fetcher].
	FormatURL SourceFormat = "url"
)

// ErrEmptySource is returned when the input holds no text.
var ErrEmptySource = errors.New("form: source text is empty")

// ErrUnsupportedFormat is returned for unknown formats, and for URL sources
// when the service has no fetcher.
var ErrUnsupportedFormat = errors.New("form: unsupported source format")

// Fetcher retrieves a page and returns its content as markdown.
type Fetcher interface {
	FetchMarkdown(ctx context.Context, url string) (string, error)
}

// ParseFormat maps a format name to a SourceFormat. The empty name is text.
func ParseFormat(name string) (SourceFormat, error) {
	switch f := SourceFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatMarkdown, FormatHTML, FormatURL:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// PrepareSource turns raw input into the text placed in the prompt. HTML is
// converted to markdown; text and markdown are trimmed. URL sources are not
// handled here.
func PrepareSource(source string, format SourceFormat) (string, error) {
	var text string
	switch format {
	case "", FormatText, FormatMarkdown:
		text = source
	case FormatHTML:
		markdown, err := htmltomarkdown.ConvertString(source)
		if err != nil {
			return "", fmt.Errorf("form: convert HTML to markdown: %w", err)
		}
		text = markdown
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptySource
	}
	return text, nil
}
