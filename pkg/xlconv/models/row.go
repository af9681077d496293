package models

import "strings"

// Row is one logical data row keyed by resolved header. Values are the
// coerced cell values: string, float64, int64, bool, nil, or — after
// nested reconstruction — map[string]any and []any.
type Row map[string]any

// Meaningful reports whether v counts as data: non-nil and, for
// strings, non-blank.
func Meaningful(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// MeaningfulFields returns the keys of r that hold meaningful values.
func (r Row) MeaningfulFields() []string {
	var keys []string
	for k, v := range r {
		if Meaningful(v) {
			keys = append(keys, k)
		}
	}
	return keys
}
