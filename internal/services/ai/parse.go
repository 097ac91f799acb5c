package ai

import (
	"strings"

	"github.com/benvon/interview-tracker/internal/models"
)

// maxTagLength bounds how far into the text a closing bracket is accepted as a tag.
const maxTagLength = 64

// ParseCategorizedAnswer splits a leading "[Category]" tag from the answer text. Without
// a tag the category is Other and the whole text is the answer.
func ParseCategorizedAnswer(text string) (category string, answer string) {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	// Models sometimes bold the tag.
	trimmed = strings.TrimPrefix(trimmed, "**")

	if !strings.HasPrefix(trimmed, "[") {
		return models.CategoryOther, strings.TrimSpace(text)
	}

	end := strings.Index(trimmed, "]")
	if end < 0 || end > maxTagLength || strings.ContainsAny(trimmed[:end], "\n") {
		return models.CategoryOther, strings.TrimSpace(text)
	}

	label := strings.TrimSpace(trimmed[1:end])
	rest := strings.TrimPrefix(trimmed[end+1:], "**")
	rest = strings.TrimSpace(rest)
	if label == "" {
		return models.CategoryOther, rest
	}
	return label, rest
}

// MatchCategory resolves label against labels case-insensitively. Unknown labels
// resolve to Other.
func MatchCategory(label string, labels []string) string {
	for _, l := range labels {
		if strings.EqualFold(l, label) {
			return l
		}
	}
	return models.CategoryOther
}
