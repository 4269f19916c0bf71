package extract

import (
	"regexp"
	"strings"
)

func markerRE(marker string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(marker))
}

// Section isolates the bounded sub-range of text between startMarker and the
// earliest of endMarkers found after it, case-insensitively. It returns ""
// when the start marker is absent; callers fall back to whole-document text
// rather than treating an empty section as a failure. Scoping a field to its
// section keeps a label reused elsewhere in the document (a store's
// "Phone Number:", say) from bleeding into an unrelated field.
//
// Markers are located with case-insensitive regexes on the text itself.
// Indexing a lowercased copy would be wrong: lowercasing can change byte
// lengths, so its offsets do not transfer back.
func Section(text, startMarker string, endMarkers []string) string {
	loc := markerRE(startMarker).FindStringIndex(text)
	if loc == nil {
		return ""
	}
	start := loc[1]

	end := len(text)
	rest := text[start:]
	for _, em := range endMarkers {
		if l := markerRE(em).FindStringIndex(rest); l != nil && start+l[0] < end {
			end = start + l[0]
		}
	}
	return strings.TrimSpace(text[start:end])
}
