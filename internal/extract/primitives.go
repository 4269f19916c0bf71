package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultMaxLabelValueLen bounds the length of a value captured after a
// label. OCR merge artifacts can glue whole paragraphs onto one line; the
// cap keeps a runaway match from swallowing them.
const DefaultMaxLabelValueLen = 200

var (
	nonDigitRE = regexp.MustCompile(`\D`)
	moneyRE    = regexp.MustCompile(`\d+(?:\.\d{1,2})?`)
	phoneRE    = regexp.MustCompile(`\(?\d{3}\)?\s*[- ]?\s*\d{3}\s*[- ]?\s*\d{4}`)
)

// LabelValue finds the first case-insensitive occurrence of "label:" and
// returns the remainder of that line, trimmed and truncated to maxLen. Only
// horizontal whitespace may follow the colon: a label whose value line is
// empty is absent, not filled from the next line.
func LabelValue(text, label string, maxLen int) (string, bool) {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `\s*:[ \t]*([^\n]+)`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return "", false
	}
	if len(v) > maxLen {
		v = strings.TrimSpace(v[:truncToRune(v, maxLen)])
	}
	return v, true
}

// truncToRune returns the largest cut point <= max that does not split a
// multi-byte rune in s.
func truncToRune(s string, max int) int {
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return max
}

// BlockAfterLabel returns all text after "label:" up to the next stop label
// formatted as "StopLabel:", an all-caps field header, or the end of the
// chunk, whichever comes first. Interior whitespace is collapsed. Used for
// fields that span multiple physical lines, such as a postal address.
func BlockAfterLabel(text, label string, stopLabels []string) (string, bool) {
	quoted := make([]string, len(stopLabels))
	for i, s := range stopLabels {
		quoted[i] = regexp.QuoteMeta(s)
	}
	stopUnion := strings.Join(quoted, "|")
	re := regexp.MustCompile(
		`(?is)` + regexp.QuoteMeta(label) + `\s*:\s*(.*?)(?:\n(?:` + stopUnion + `)\s*:|\n[A-Z][A-Z ]{3,}:|\z)`,
	)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	v := collapseSpaces(m[1])
	if v == "" {
		return "", false
	}
	return v, true
}

// Money extracts the first integer-or-decimal amount (up to two decimal
// places) from s, after stripping thousands separators.
func Money(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	m := moneyRE.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// DigitRun strips all non-digit characters from chunk, then returns the
// longest remaining digit run whose length lies within [minLen, maxLen].
// Ties go to the earliest run. Device identifiers and SIM numbers carry no
// distinguishing shape beyond their expected length ranges.
func DigitRun(chunk string, minLen, maxLen int) (string, bool) {
	digits := nonDigitRE.ReplaceAllString(chunk, "")
	if digits == "" {
		return "", false
	}
	re := regexp.MustCompile(fmt.Sprintf(`\d{%d,%d}`, minLen, maxLen))
	runs := re.FindAllString(digits, -1)
	if len(runs) == 0 {
		return "", false
	}
	best := runs[0]
	for _, r := range runs[1:] {
		if len(r) > len(best) {
			best = r
		}
	}
	return best, true
}

// Phone searches chunk for a 10-digit-shaped phone pattern (optional
// parentheses and separators) and returns the last 10 digits of the match.
// Taking the last 10 guards against a leading country code misread by OCR.
func Phone(chunk string) (string, bool) {
	m := phoneRE.FindString(chunk)
	if m == "" {
		return "", false
	}
	digits := nonDigitRE.ReplaceAllString(m, "")
	if len(digits) < 10 {
		return "", false
	}
	return digits[len(digits)-10:], true
}
