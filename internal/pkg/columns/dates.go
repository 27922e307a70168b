package columns

import (
	"regexp"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

var dateLayouts = []string{
	isoDate,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006.01.02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"20060102",
}

var isoPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// NormalizeDate renders a date in YYYY-MM-DD so that differing producer formats land in the
// same bucket. Strings that match no known layout are returned trimmed.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate)
		}
	}

	if m := isoPrefix.FindString(s); m != "" {
		return m
	}

	return s
}

// InWindow reports whether the normalized date d falls inside [start, end]. Empty bounds are
// open.
func InWindow(d, start, end string) bool {
	d = NormalizeDate(d)
	if start = NormalizeDate(start); start != "" && d < start {
		return false
	}
	if end = NormalizeDate(end); end != "" && d > end {
		return false
	}
	return true
}
