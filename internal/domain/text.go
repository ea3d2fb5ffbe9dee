package domain

import "strings"

// TruncateEllipsis shortens text to at most maxRunes runes, trimming
// trailing whitespace before appending the ellipsis marker. Text at or
// under the ceiling is returned unchanged.
func TruncateEllipsis(text string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return strings.TrimRight(string(runes[:maxRunes]), " \t\n\r") + "…"
}
