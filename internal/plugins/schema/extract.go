// Package schema recovers structured output from the noisy replies AI
// providers actually return: markdown fences, explanatory prose around the
// JSON, or a malformed block for one category while the rest is fine.
package schema

import (
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("(?i)```(?:json)?\\s*")
	jsonIsland = regexp.MustCompile(`(?s)(\[.*\]|\{.*\})`)
)

// ExtractJSON strips code-fence markers and any leading or trailing non-JSON
// prose from raw. The second return is false when no JSON-looking payload
// remains; callers must then fall back, never error.
func ExtractJSON(raw string) (string, bool) {
	cleaned := fenceOpen.ReplaceAllString(raw, "")
	cleaned = strings.TrimSpace(cleaned)

	if start := strings.IndexAny(cleaned, "[{"); start > 0 {
		cleaned = cleaned[start:]
	} else if start < 0 {
		return "", false
	}
	if end := strings.LastIndexAny(cleaned, "]}"); end >= 0 {
		cleaned = cleaned[:end+1]
	}

	if !strings.HasPrefix(cleaned, "[") && !strings.HasPrefix(cleaned, "{") {
		m := jsonIsland.FindString(cleaned)
		if m == "" {
			return "", false
		}
		cleaned = m
	}
	return cleaned, true
}
