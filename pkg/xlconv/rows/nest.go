package rows

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/xlconv/xlconv-go/pkg/xlconv/models"
)

// BuildNested expands dot-notation keys into nested objects and
// arrays. The pass is skipped entirely when no key of the first row
// contains a dot. A path segment becomes an array element when the
// following segment is purely numeric; non-dotted keys pass through to
// the top level unchanged.
func BuildNested(in []models.Row) []models.Row {
	if len(in) == 0 || !hasDottedKey(in[0]) {
		return in
	}

	out := make([]models.Row, len(in))
	for i, row := range in {
		out[i] = expandRow(row)
	}
	return out
}

func hasDottedKey(row models.Row) bool {
	for k := range row {
		if strings.Contains(k, ".") {
			return true
		}
	}
	return false
}

func expandRow(row models.Row) models.Row {
	out := make(models.Row, len(row))
	// Sorted key order keeps the container choice stable when sibling
	// segments disagree on array vs object.
	for _, k := range slices.Sorted(maps.Keys(row)) {
		v := row[k]
		if !strings.Contains(k, ".") {
			out[k] = v
			continue
		}
		assignPath(map[string]any(out), strings.Split(k, "."), v)
	}
	return out
}

// assignPath walks/creates intermediate containers along path and
// assigns value at the leaf.
func assignPath(root map[string]any, path []string, value any) {
	assign(root, path, value)
}

func assign(container any, path []string, value any) any {
	seg := path[0]

	if len(path) == 1 {
		switch c := container.(type) {
		case map[string]any:
			c[seg] = value
			return c
		case []any:
			if idx, ok := arrayIndex(seg); ok {
				c = growTo(c, idx+1)
				c[idx] = value
			}
			return c
		}
		return container
	}

	switch c := container.(type) {
	case map[string]any:
		child, ok := c[seg]
		if !ok || child == nil {
			child = newContainer(path[1])
		}
		c[seg] = assign(child, path[1:], value)
		return c
	case []any:
		idx, ok := arrayIndex(seg)
		if !ok {
			return c
		}
		c = growTo(c, idx+1)
		if c[idx] == nil {
			c[idx] = newContainer(path[1])
		}
		c[idx] = assign(c[idx], path[1:], value)
		return c
	}
	return container
}

// newContainer picks the container type for a path segment based on
// the segment that follows it: numeric means array, else object.
func newContainer(nextSeg string) any {
	if _, ok := arrayIndex(nextSeg); ok {
		return []any{}
	}
	return map[string]any{}
}

func arrayIndex(seg string) (int, bool) {
	if seg == "" {
		return 0, false
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return idx, true
}

func growTo(s []any, n int) []any {
	for len(s) < n {
		s = append(s, nil)
	}
	return s
}
