// Package sheet extracts row records from a decoded sheet grid:
// header resolution, data-start computation, and per-cell coercion.
package sheet

import (
	"strconv"
	"time"

	"github.com/xlconv/xlconv-go/pkg/xlconv/header"
	"github.com/xlconv/xlconv-go/pkg/xlconv/models"
	"github.com/xlconv/xlconv-go/pkg/xlconv/transform"
)

// SheetNameKey is the injected field carrying the source sheet name.
const SheetNameKey = "_sheet"

// Config controls one extraction pass. The orchestrator builds it from
// normalized converter options.
type Config struct {
	// HeaderRow is the 0-based header row offset within the used
	// range. Ignored when NoHeader is set.
	HeaderRow int
	// NoHeader keys columns by their letter label instead of a
	// resolved header row.
	NoHeader bool
	// DateLayout is the Go time layout date cells are rendered with.
	DateLayout string
	// SkipEmptyRows drops rows with no meaningful value.
	SkipEmptyRows bool
	// IncludeSheetName injects the sheet name under SheetNameKey.
	IncludeSheetName bool
	// Transform is applied to every cell value, last.
	Transform transform.ValueFunc
	// HeaderTransform is applied to every resolved header.
	HeaderTransform transform.HeaderFunc
}

// Headers maps grid columns to resolved header names for one pass.
type Headers struct {
	// ByCol maps 1-based column number to resolved header.
	ByCol map[int]string
	// Ordered lists headers in column order.
	Ordered []string
	// DataStart is the first 1-based data row.
	DataStart int
}

// ResolveHeaders builds the header map for a grid. When the first pass
// resolves to mostly bare column letters — the misexport signature —
// the pass is discarded, headers are re-resolved one row below, and
// data starts two rows after the configured header row.
func ResolveHeaders(grid *models.Grid, headerRow int) Headers {
	row := grid.MinRow + headerRow
	resolved := resolveRow(grid, row)
	dataStart := row + 1

	if header.LooksLikeColumnLetters(resolved) && row+1 <= grid.MaxRow {
		resolved = resolveRow(grid, row+1)
		dataStart = row + 2
	}

	ordered := header.EnsureUnique(resolved)
	byCol := make(map[int]string, len(ordered))
	for i, h := range ordered {
		byCol[grid.MinCol+i] = h
	}
	return Headers{ByCol: byCol, Ordered: ordered, DataStart: dataStart}
}

func resolveRow(grid *models.Grid, row int) []string {
	r := header.NewResolver()
	out := make([]string, 0, grid.ColCount())
	for c := grid.MinCol; c <= grid.MaxCol; c++ {
		out = append(out, r.Resolve(cellText(grid, row, c)))
	}
	return out
}

// columnHeaders keys columns by letter label for header-less sheets.
func columnHeaders(grid *models.Grid) Headers {
	byCol := make(map[int]string, grid.ColCount())
	ordered := make([]string, 0, grid.ColCount())
	for c := grid.MinCol; c <= grid.MaxCol; c++ {
		label := header.ColumnLabel(c)
		byCol[c] = label
		ordered = append(ordered, label)
	}
	return Headers{ByCol: byCol, Ordered: ordered, DataStart: grid.MinRow}
}

// Extract walks the grid's used range and emits one row record per
// data row. Missing cells become explicit nils so every record shares
// one key set before cleaning.
func Extract(grid *models.Grid, sheetName string, cfg Config) ([]models.Row, Headers) {
	var hdrs Headers
	if cfg.NoHeader {
		hdrs = columnHeaders(grid)
	} else {
		hdrs = ResolveHeaders(grid, cfg.HeaderRow)
	}
	if cfg.HeaderTransform != nil {
		applyHeaderTransform(&hdrs, cfg.HeaderTransform)
	}

	var out []models.Row
	for r := hdrs.DataStart; r <= grid.MaxRow; r++ {
		row := make(models.Row, len(hdrs.ByCol))
		keep := false
		for c := grid.MinCol; c <= grid.MaxCol; c++ {
			h, ok := hdrs.ByCol[c]
			if !ok {
				continue
			}
			v := extractValue(grid, r, c, cfg)
			if cfg.Transform != nil {
				v = cfg.Transform(v, h)
			}
			row[h] = v
			if models.Meaningful(v) {
				keep = true
			}
		}
		if !keep && cfg.SkipEmptyRows {
			continue
		}
		if cfg.IncludeSheetName {
			row[SheetNameKey] = sheetName
		}
		out = append(out, row)
	}
	if out == nil {
		out = []models.Row{}
	}
	return out, hdrs
}

// extractValue reads and coerces one cell. Date cells render through
// the configured layout, boolean cells stay bool, and formula cells
// contribute their decoder-computed value.
func extractValue(grid *models.Grid, row, col int, cfg Config) any {
	cell, ok := grid.Cell(row, col)
	if !ok || cell.IsEmpty() {
		return nil
	}

	if t, isTime := cell.Time(); isTime {
		layout := cfg.DateLayout
		if layout == "" {
			layout = "02/01/2006"
		}
		return t.Format(layout)
	}
	return cell.Value
}

func applyHeaderTransform(h *Headers, fn transform.HeaderFunc) {
	for c, name := range h.ByCol {
		h.ByCol[c] = fn(name)
	}
	for i, name := range h.Ordered {
		h.Ordered[i] = fn(name)
	}
}

func cellText(grid *models.Grid, row, col int) string {
	cell, ok := grid.Cell(row, col)
	if !ok || cell.Value == nil {
		return ""
	}
	switch v := cell.Value.(type) {
	case string:
		return v
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return stringify(v)
	}
}

func stringify(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case bool:
		if n {
			return "TRUE"
		}
		return "FALSE"
	}
	return ""
}
