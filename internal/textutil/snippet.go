package textutil

import "strings"

// DefaultSnippetLimit is the rune budget used for log and error snippets.
const DefaultSnippetLimit = 160

var whitespaceReplacer = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")

// CollapseSpace trims value and folds every run of whitespace into a single space.
func CollapseSpace(value string) string {
	return strings.Join(strings.Fields(whitespaceReplacer.Replace(value)), " ")
}

// Snippet returns a single-line preview of content truncated to limit runes.
// Empty content renders as "<empty>" so log lines never show a blank value.
func Snippet(content string, limit int) string {
	clean := CollapseSpace(content)
	if clean == "" {
		return "<empty>"
	}
	if limit <= 0 {
		limit = DefaultSnippetLimit
	}
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}

// FirstNonEmpty returns the first value that is not blank after trimming.
func FirstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
