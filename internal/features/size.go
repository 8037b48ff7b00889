package features

import (
	"math"
	"strconv"
	"strings"
)

// sizeUnit is stripped (case-insensitively) before parsing
const sizeUnit = "sqft"

// ParseSize converts a free-text area such as "1200 sqft" or "799-1258 sqft"
// into a single number. Ranges resolve to the mean of their two bounds.
// Empty or unparseable text yields 0; it never fails.
//
// The trainer and the serving path both call this function, so any change here
// changes the meaning of the trained size feature.
func ParseSize(s string) float64 {
	v, _ := parseSize(s)
	return v
}

// ParseSizeValue is ParseSize for values of unknown type. ok is false when the
// value was present but could not be read as a size (non-string or garbage
// text). A nil value is treated as absent and reports ok.
func ParseSizeValue(v any) (size float64, ok bool) {
	switch t := v.(type) {
	case nil:
		return 0, true
	case string:
		return parseSize(t)
	case *string:
		if t == nil {
			return 0, true
		}
		return parseSize(*t)
	default:
		return 0, false
	}
}

func parseSize(s string) (float64, bool) {
	clean := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(s), sizeUnit, ""))
	if clean == "" {
		return 0, true
	}

	if strings.Contains(clean, "-") {
		parts := strings.Split(clean, "-")
		low, ok := parseBound(parts[0])
		if !ok {
			return 0, false
		}
		high, ok := parseBound(parts[1])
		if !ok {
			return 0, false
		}
		return (low + high) / 2, true
	}

	v, ok := parseBound(clean)
	if !ok {
		return 0, false
	}
	return v, true
}

// parseBound rejects NaN and infinities so the parser output stays finite.
func parseBound(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
