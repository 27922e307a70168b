package columns

import (
	"strings"

	"github.com/ougirez/supplytwin/internal/domain"
)

// Lookup returns the first candidate that is present in row with a non-empty value. Exact
// names are tried first, then a pass that ignores case, spaces and underscores.
func Lookup(row domain.Row, candidates ...string) (string, bool) {
	for _, c := range candidates {
		if v, ok := row.Get(c); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}

	cols := row.Columns()
	for _, c := range candidates {
		want := normalize(c)
		for _, col := range cols {
			if normalize(col) != want {
				continue
			}
			if v, _ := row.Get(col); strings.TrimSpace(v) != "" {
				return v, true
			}
		}
	}

	return "", false
}

// Value is Lookup over a field's alias list.
func Value(row domain.Row, f Field) (string, bool) {
	return Lookup(row, f.Candidates()...)
}

// Number returns the numeric value of the first matching candidate. When no candidate
// matches it falls back to the first value in the row, in column order, that parses as a
// finite number. Zero when nothing is found.
func Number(row domain.Row, candidates ...string) float64 {
	if v, ok := Lookup(row, candidates...); ok {
		return ParseNumericLoose(v)
	}

	for _, v := range row.Values() {
		if n, ok := ParseNumeric(v); ok {
			return n
		}
	}

	return 0
}

// FieldNumber is Number over a field's alias list.
func FieldNumber(row domain.Row, f Field) float64 {
	return Number(row, f.Candidates()...)
}

// StrictNumber is like FieldNumber without the whole-row fallback scan.
func StrictNumber(row domain.Row, f Field) (float64, bool) {
	v, ok := Value(row, f)
	if !ok {
		return 0, false
	}
	return ParseNumeric(v)
}

// Detect returns the header column that serves field f, if any.
func Detect(header []string, f Field) (string, bool) {
	for _, c := range f.Candidates() {
		for _, h := range header {
			if h == c {
				return h, true
			}
		}
	}
	for _, c := range f.Candidates() {
		want := normalize(c)
		for _, h := range header {
			if normalize(h) == want {
				return h, true
			}
		}
	}
	return "", false
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}
