package fields

import (
	"regexp"
	"strings"
	"time"
)

var (
	reCompact = regexp.MustCompile(`^(\d{1,2})([A-Za-z]{3})(\d{4})$`)
	reISODate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	reUSDate  = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
)

// dateLayouts are tried in order. US month-first forms come before
// day-first so ambiguous values resolve the same way every time.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1-2-2006",
	"2-Jan-2006",
	"2-January-2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006 January 2",
	"Jan 2 2006",
	"January 2 2006",
	"1/2/06",
	"2/1/2006",
}

// ParseDate parses a date string tolerantly: ISO, US, several written-month
// forms, and the compact DDMMMYYYY stamp form (e.g. "19DEC1994"). As a last
// resort it rescues an embedded ISO or MM/DD/YYYY substring. Total failure
// yields ok=false, never an error.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	switch strings.ToLower(s) {
	case "null", "n/a":
		return time.Time{}, false
	}

	// "19DEC1994" -> "19-Dec-1994" so the day-first layouts apply.
	if m := reCompact.FindStringSubmatch(s); m != nil {
		s = m[1] + "-" + titleMonth(m[2]) + "-" + m[3]
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	if sub := reISODate.FindString(s); sub != "" {
		if t, err := time.Parse("2006-01-02", sub); err == nil {
			return t, true
		}
	}
	if sub := reUSDate.FindString(s); sub != "" {
		if t, err := time.Parse("1/2/2006", sub); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func titleMonth(m string) string {
	return strings.ToUpper(m[:1]) + strings.ToLower(m[1:])
}
