package columns

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumeric parses an untyped CSV value. Thousands separators are stripped; empty
// strings, NaN literals and infinities report ok=false.
func ParseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, false
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

// ParseNumericLoose is ParseNumeric with "no value" collapsed to 0.
func ParseNumericLoose(s string) float64 {
	v, _ := ParseNumeric(s)
	return v
}

// ParseBool reads the truthy spellings producers use for flags.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "expedited":
		return true
	}
	return false
}
