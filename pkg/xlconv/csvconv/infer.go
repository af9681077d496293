// Package csvconv turns raw CSV text into row records: delimiter
// detection, quote-aware field splitting, and per-field type inference.
package csvconv

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numericRe matches integers, decimals, and scientific notation. It is
// deliberately stricter than strconv.ParseFloat, which would also
// accept "Inf", "NaN" and hex floats.
var numericRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// dateLayouts are the accepted date shapes, in match order. Go's
// numeric layout fields accept both padded and unpadded digits, so
// "1/2/2024" parses against "01/02/2006" as well.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
}

// Infer classifies a raw CSV field and converts it. Decision order:
// empty → nil, boolean token → bool, numeric literal → int64/float64,
// date shape → time.Time, otherwise the trimmed string. The order
// keeps ambiguous tokens like "2024" numeric rather than date.
func Infer(raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	switch strings.ToLower(s) {
	case "true", "yes", "y":
		return true
	case "false", "no", "n":
		return false
	}

	if numericRe.MatchString(s) {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return s
}
