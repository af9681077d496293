// Package decode opens workbook bytes with excelize and materializes
// each sheet as a typed cell grid. It is the only package that touches
// the binary workbook format; the conversion core consumes grids only.
package decode

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/xlconv/xlconv-go/pkg/xlconv/models"
)

// Workbook is the decoded form the conversion core works from.
type Workbook struct {
	// SheetNames preserves workbook sheet order.
	SheetNames []string
	Sheets     map[string]*models.Grid
}

// Decode opens workbook bytes and decodes every sheet into a grid.
func Decode(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{
		SheetNames: f.GetSheetList(),
		Sheets:     make(map[string]*models.Grid),
	}
	for _, name := range wb.SheetNames {
		grid, err := decodeSheet(f, name)
		if err != nil {
			return nil, fmt.Errorf("decode sheet %q: %w", name, err)
		}
		wb.Sheets[name] = grid
	}
	return wb, nil
}

func decodeSheet(f *excelize.File, name string) (*models.Grid, error) {
	minRow, minCol, maxRow, maxCol, err := usedRange(f, name)
	if err != nil {
		return nil, err
	}

	grid := models.NewGrid(minRow, minCol, maxRow, maxCol)
	for r := minRow; r <= maxRow; r++ {
		for c := minCol; c <= maxCol; c++ {
			cellName, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return nil, err
			}
			cell, ok, err := decodeCell(f, name, cellName)
			if err != nil {
				return nil, err
			}
			if ok {
				grid.SetCell(r, c, cell)
			}
		}
	}
	return grid, nil
}

// usedRange reads the declared sheet dimension, falling back to a row
// scan when the dimension is missing or degenerate.
func usedRange(f *excelize.File, name string) (minRow, minCol, maxRow, maxCol int, err error) {
	dim, err := f.GetSheetDimension(name)
	if err == nil && strings.Contains(dim, ":") {
		parts := strings.SplitN(dim, ":", 2)
		c1, r1, err1 := excelize.CellNameToCoordinates(parts[0])
		c2, r2, err2 := excelize.CellNameToCoordinates(parts[1])
		if err1 == nil && err2 == nil {
			return r1, c1, r2, c2, nil
		}
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	maxRow = len(rows)
	for _, row := range rows {
		if len(row) > maxCol {
			maxCol = len(row)
		}
	}
	if maxRow == 0 || maxCol == 0 {
		return 1, 1, 0, 0, nil
	}
	return 1, 1, maxRow, maxCol, nil
}

// decodeCell reads one cell and classifies it. The second return is
// false for absent/blank cells.
func decodeCell(f *excelize.File, sheet, cellName string) (models.Cell, bool, error) {
	raw, err := f.GetCellValue(sheet, cellName, excelize.Options{RawCellValue: true})
	if err != nil {
		return models.Cell{}, false, err
	}
	if raw == "" {
		return models.Cell{}, false, nil
	}

	formula, _ := f.GetCellFormula(sheet, cellName)
	ctype, err := f.GetCellType(sheet, cellName)
	if err != nil {
		return models.Cell{}, false, err
	}

	if formula != "" {
		// Formula cells carry the cached computed result; the core
		// never evaluates formulas itself.
		return models.Cell{
			Value:   computedValue(raw),
			Type:    models.TypeFormula,
			Formula: formula,
		}, true, nil
	}

	switch ctype {
	case excelize.CellTypeBool:
		return models.Cell{Value: raw == "1" || strings.EqualFold(raw, "true"), Type: models.TypeBoolean}, true, nil
	case excelize.CellTypeError:
		return models.Cell{Value: raw, Type: models.TypeError}, true, nil
	case excelize.CellTypeDate:
		if t, ok := serialToTime(raw); ok {
			return models.Cell{Value: t, Type: models.TypeDate}, true, nil
		}
		return models.Cell{Value: raw, Type: models.TypeDate}, true, nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if serial, err := strconv.ParseFloat(raw, 64); err == nil {
			if isDateStyled(f, sheet, cellName) {
				if t, ok := serialToTime(raw); ok {
					return models.Cell{Value: t, Type: models.TypeDate}, true, nil
				}
			}
			return models.Cell{Value: serial, Type: models.TypeNumber}, true, nil
		}
	}

	return models.Cell{Value: raw, Type: models.TypeString}, true, nil
}

// computedValue keeps formula results numeric when they parse as such.
func computedValue(raw string) any {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}

func serialToTime(raw string) (time.Time, bool) {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return time.Time{}, false
	}
	parsed, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// builtinDateFormats are the built-in number format IDs that render
// dates or times.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true,
	20: true, 21: true, 22: true, 27: true, 28: true, 29: true,
	30: true, 31: true, 32: true, 33: true, 34: true, 35: true,
	36: true, 45: true, 46: true, 47: true, 50: true, 51: true,
	52: true, 53: true, 54: true, 55: true, 56: true, 57: true,
	58: true,
}

// isDateStyled reports whether a numeric cell's display format renders
// a date.
func isDateStyled(f *excelize.File, sheet, cellName string) bool {
	styleID, err := f.GetCellStyle(sheet, cellName)
	if err != nil {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if builtinDateFormats[style.NumFmt] {
		return true
	}
	if style.CustomNumFmt != nil {
		return customFormatIsDate(*style.CustomNumFmt)
	}
	return false
}

// customFormatIsDate scans a custom number format for date tokens,
// skipping quoted literals and bracketed sections like [Red] or [$-409].
func customFormatIsDate(format string) bool {
	inQuote, inBracket := false, false
	for _, r := range format {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == '[' && !inQuote:
			inBracket = true
		case r == ']' && !inQuote:
			inBracket = false
		case inQuote || inBracket:
		case r == 'y' || r == 'm' || r == 'd' || r == 'h' || r == 's':
			return true
		}
	}
	return false
}
