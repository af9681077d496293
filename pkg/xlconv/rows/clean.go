// Package rows post-processes extracted row records: empty row/column
// elimination with the index-column heuristic, and nested-object
// reconstruction from dot-notation keys.
package rows

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xlconv/xlconv-go/pkg/xlconv/models"
)

var (
	numericKeyRe      = regexp.MustCompile(`^\d+$`)
	singleLetterKeyRe = regexp.MustCompile(`^[A-Z]$`)
)

// indexKeyNames are column names that commonly carry an incidental row
// counter rather than data.
var indexKeyNames = map[string]bool{
	"index":     true,
	"row":       true,
	"rownum":    true,
	"rownumber": true,
	"#":         true,
}

// Clean removes empty rows and columns. A row survives when it has at
// least two meaningful fields, or exactly one that does not look like
// an incidental index value. Columns with no meaningful value in any
// surviving row are dropped by re-projecting every row. Clean never
// mutates its input and is idempotent.
func Clean(in []models.Row, skipEmptyRows, skipEmptyColumns, ignoreIndexOnlyRows bool) []models.Row {
	kept := make([]models.Row, 0, len(in))
	for _, row := range in {
		if skipEmptyRows && rowIsEmpty(row, ignoreIndexOnlyRows) {
			continue
		}
		kept = append(kept, row)
	}

	if !skipEmptyColumns {
		return kept
	}
	return dropEmptyColumns(kept)
}

// rowIsEmpty applies the emptiness rule from the cleaner contract.
func rowIsEmpty(row models.Row, ignoreIndexOnlyRows bool) bool {
	fields := row.MeaningfulFields()
	switch len(fields) {
	case 0:
		return true
	case 1:
		return ignoreIndexOnlyRows && looksLikeIndexField(fields[0], row[fields[0]])
	default:
		return false
	}
}

// looksLikeIndexField reports whether a lone populated field is an
// incidental sequence value: an index-shaped key holding a positive
// integer.
func looksLikeIndexField(key string, value any) bool {
	if !indexShapedKey(key) {
		return false
	}
	return isPositiveInteger(value)
}

func indexShapedKey(key string) bool {
	if numericKeyRe.MatchString(key) || singleLetterKeyRe.MatchString(key) {
		return true
	}
	return indexKeyNames[strings.ToLower(key)]
}

func isPositiveInteger(v any) bool {
	switch n := v.(type) {
	case int:
		return n > 0
	case int64:
		return n > 0
	case float64:
		return n > 0 && n == float64(int64(n))
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return err == nil && i > 0
	}
	return false
}

func dropEmptyColumns(in []models.Row) []models.Row {
	populated := make(map[string]bool)
	for _, row := range in {
		for k, v := range row {
			if models.Meaningful(v) {
				populated[k] = true
			}
		}
	}

	out := make([]models.Row, len(in))
	for i, row := range in {
		projected := make(models.Row, len(populated))
		for k, v := range row {
			if populated[k] {
				projected[k] = v
			}
		}
		out[i] = projected
	}
	return out
}
