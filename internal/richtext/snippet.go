package richtext

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripTagsPolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

// PlainText strips every tag from persisted content and collapses runs of
// whitespace.
func PlainText(content string) string {
	text := html.UnescapeString(stripTagsPolicy.Sanitize(content))
	return strings.Join(strings.Fields(text), " ")
}

// Snippet returns at most limit runes of the plain text, suffixed with
// "..." when truncated.
func Snippet(content string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	text := PlainText(content)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
