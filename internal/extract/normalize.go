// Package extract implements the field-extraction engine for wireless-service
// contracts. It operates on the raw text produced by an OCR pass, which is
// noisy: inconsistent spacing, merged lines, truncated labels, and layout
// drift between contract templates. Every function is pure and returns an
// explicit "not found" instead of erroring on malformed input.
package extract

import (
	"regexp"
	"strings"
)

var (
	horizontalSpaceRE = regexp.MustCompile(`[ \t]+`)
	blankLinesRE      = regexp.MustCompile(`\n{2,}`)
	anySpaceRE        = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes whitespace in raw OCR text: carriage returns fold
// into newlines, runs of horizontal whitespace collapse to a single space,
// runs of blank lines collapse to one newline, and the result is trimmed.
// Normalizing already-normalized text is a no-op.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r", "\n")
	s = horizontalSpaceRE.ReplaceAllString(s, " ")
	s = blankLinesRE.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// collapseSpaces folds all interior whitespace (including newlines) into
// single spaces and trims the ends.
func collapseSpaces(s string) string {
	return strings.TrimSpace(anySpaceRE.ReplaceAllString(s, " "))
}
