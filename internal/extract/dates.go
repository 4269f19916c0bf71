package extract

import (
	"regexp"
	"time"
)

// dateLayouts are tried in order; the first successful parse wins. The two
// slash layouts are genuinely ambiguous for inputs like "03/04/2025" and the
// month-first layout is deliberately preferred.
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"1/2/2006",
	"2/1/2006",
}

// isoFallbackLayouts cover ISO-8601 datetime strings that the calendar
// layouts above do not.
var isoFallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

var (
	trailingPunctRE = regexp.MustCompile(`[;|]+$`)
	// A date-shaped token: "November 18, 2027", "2027-11-18", or "11/18/2027".
	dateTokenPattern = `[A-Za-z]{3,9}\s+\d{1,2},\s+\d{4}|\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4}`
)

// ParseDate parses a date string in one of several known calendar formats,
// stripping trailing punctuation first. Returns false if nothing matches.
func ParseDate(s string) (time.Time, bool) {
	s = collapseSpaces(s)
	if s == "" {
		return time.Time{}, false
	}
	s = collapseSpaces(trailingPunctRE.ReplaceAllString(s, ""))
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range isoFallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LabeledDate finds "label: <date>" where a recognizable date token directly
// follows the label. Capturing only the date-shaped token means OCR-merged
// trailing text ("End Date: November 18, 2027 Early Cancellation Fee(s): ...")
// does not break parsing.
func LabeledDate(text, label string) (time.Time, bool) {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `\s*:\s*(` + dateTokenPattern + `)`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	return ParseDate(m[1])
}
