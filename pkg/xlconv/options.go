// Package xlconv converts spreadsheet content — Excel workbooks and
// CSV text — into structured row records with typed values, cleaned
// rows and columns, and optional nested-object reconstruction.
package xlconv

import (
	"log/slog"
	"strings"

	"github.com/xlconv/xlconv-go/pkg/xlconv/csvconv"
	"github.com/xlconv/xlconv-go/pkg/xlconv/transform"
	"github.com/xlconv/xlconv-go/pkg/xlconv/validate"
)

// selectionMode discriminates the sheet selection variants.
type selectionMode int

const (
	selectFirst selectionMode = iota
	selectAll
	selectNames
	selectIndices
)

// SheetSelection names which sheets of a workbook to process. The zero
// value selects the first sheet.
type SheetSelection struct {
	mode    selectionMode
	names   []string
	indices []int
}

// FirstSheet selects only the first sheet (the default).
func FirstSheet() SheetSelection { return SheetSelection{mode: selectFirst} }

// AllSheets selects every sheet in workbook order.
func AllSheets() SheetSelection { return SheetSelection{mode: selectAll} }

// SheetsByName selects sheets by name, preserving caller order.
// Unknown names are dropped silently.
func SheetsByName(names ...string) SheetSelection {
	return SheetSelection{mode: selectNames, names: names}
}

// SheetsByIndex selects sheets by 0-based workbook index. Out-of-range
// indices are dropped silently.
func SheetsByIndex(indices ...int) SheetSelection {
	return SheetSelection{mode: selectIndices, indices: indices}
}

// multi reports whether the selection can address more than one sheet,
// which switches the result to the name-keyed shape.
func (s SheetSelection) multi() bool {
	return s.mode != selectFirst
}

// resolve intersects the selection with the available sheet names.
func (s SheetSelection) resolve(available []string) []string {
	switch s.mode {
	case selectAll:
		return available
	case selectNames:
		known := make(map[string]bool, len(available))
		for _, n := range available {
			known[n] = true
		}
		var out []string
		for _, n := range s.names {
			if known[n] {
				out = append(out, n)
			}
		}
		return out
	case selectIndices:
		var out []string
		for _, i := range s.indices {
			if i >= 0 && i < len(available) {
				out = append(out, available[i])
			}
		}
		return out
	default:
		if len(available) == 0 {
			return nil
		}
		return available[:1]
	}
}

// Options is the caller-facing configuration surface. Every field is
// optional; Convert normalizes it once per run into a fully populated
// internal form.
type Options struct {
	// Sheets selects which workbook sheets to process.
	Sheets SheetSelection
	// HeaderRow is the 0-based header row offset (default 0).
	HeaderRow int
	// NoHeaderRow keys columns by letter label instead of a header row.
	NoHeaderRow bool
	// DateFormat is a display pattern like "DD/MM/YYYY" (the default).
	DateFormat string
	// SkipEmptyRows drops empty rows (default true).
	SkipEmptyRows *bool
	// SkipEmptyColumns drops columns with no data (default true).
	SkipEmptyColumns *bool
	// IgnoreIndexOnlyRows treats rows holding only an incidental index
	// value as empty (default true).
	IgnoreIndexOnlyRows *bool
	// IncludeSheetName injects a "_sheet" field into every row.
	IncludeSheetName bool
	// ParseFormulas exposes decoder-computed formula results (the
	// decoder always evaluates; this toggle is informational).
	ParseFormulas bool
	// NestedObjects expands dot-notation keys into nested structures.
	NestedObjects bool
	// ValueTransform is applied to every cell value during extraction.
	ValueTransform transform.ValueFunc
	// HeaderTransform is applied to every resolved header.
	HeaderTransform transform.HeaderFunc
	// CSV holds dialect overrides for CSV input.
	CSV csvconv.Options
	// ValidateTypes enables row/cell validators (default off).
	ValidateTypes bool
	// RowValidator is an optional whole-row validator.
	RowValidator validate.RowFunc
	// CellValidator is an optional per-cell validator.
	CellValidator validate.CellFunc
	// ContinueOnValidationError keeps rows that fail validation in the
	// output (default true). When false, failing rows are excluded.
	ContinueOnValidationError *bool
	// MaxValidationErrors caps the accumulated error log (default 100).
	MaxValidationErrors int
	// Concurrency is the sheet batch width (default 4, minimum 1).
	Concurrency int
	// Resolver turns path/URL references into raw content. Without
	// one, reference-shaped input is rejected: the core does no I/O.
	Resolver SourceResolver
	// Monitor receives performance callbacks; nil installs a no-op.
	Monitor PerformanceMonitor
	// Logger receives structured pipeline logs; nil uses slog.Default.
	Logger *slog.Logger
}

// options is the normalized, fully populated form used internally.
type options struct {
	sheets              SheetSelection
	headerRow           int
	noHeaderRow         bool
	dateLayout          string
	skipEmptyRows       bool
	skipEmptyColumns    bool
	ignoreIndexOnlyRows bool
	includeSheetName    bool
	parseFormulas       bool
	nestedObjects       bool
	valueTransform      transform.ValueFunc
	headerTransform     transform.HeaderFunc
	hasValueTransform   bool
	hasHeaderTransform  bool
	csv                 csvconv.Options
	validateTypes       bool
	rowValidator        validate.RowFunc
	cellValidator       validate.CellFunc
	continueOnError     bool
	maxErrors           int
	concurrency         int
	resolver            SourceResolver
	monitor             PerformanceMonitor
	logger              *slog.Logger
}

const (
	defaultDateFormat = "DD/MM/YYYY"
	defaultMaxErrors  = 100
	defaultBatchWidth = 4
)

func normalizeOptions(o Options) options {
	n := options{
		sheets:              o.Sheets,
		headerRow:           max(o.HeaderRow, 0),
		noHeaderRow:         o.NoHeaderRow,
		dateLayout:          dateLayout(o.DateFormat),
		skipEmptyRows:       boolOr(o.SkipEmptyRows, true),
		skipEmptyColumns:    boolOr(o.SkipEmptyColumns, true),
		ignoreIndexOnlyRows: boolOr(o.IgnoreIndexOnlyRows, true),
		includeSheetName:    o.IncludeSheetName,
		parseFormulas:       o.ParseFormulas,
		nestedObjects:       o.NestedObjects,
		valueTransform:      o.ValueTransform,
		headerTransform:     o.HeaderTransform,
		hasValueTransform:   o.ValueTransform != nil,
		hasHeaderTransform:  o.HeaderTransform != nil,
		csv:                 o.CSV,
		validateTypes:       o.ValidateTypes,
		rowValidator:        o.RowValidator,
		cellValidator:       o.CellValidator,
		continueOnError:     boolOr(o.ContinueOnValidationError, true),
		maxErrors:           o.MaxValidationErrors,
		concurrency:         o.Concurrency,
		resolver:            o.Resolver,
		monitor:             o.Monitor,
		logger:              o.Logger,
	}
	if n.maxErrors <= 0 {
		n.maxErrors = defaultMaxErrors
	}
	if n.concurrency <= 0 {
		n.concurrency = defaultBatchWidth
	}
	if n.monitor == nil {
		n.monitor = NopMonitor{}
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	return n
}

func boolOr(p *bool, def bool) bool {
	if p != nil {
		return *p
	}
	return def
}

// dateLayout converts a display pattern like "DD/MM/YYYY" into a Go
// time layout. Month tokens are uppercase (MM), minute tokens
// lowercase (mm).
func dateLayout(pattern string) string {
	if strings.TrimSpace(pattern) == "" {
		pattern = defaultDateFormat
	}
	return strings.NewReplacer(
		"YYYY", "2006",
		"YY", "06",
		"MM", "01",
		"DD", "02",
		"HH", "15",
		"mm", "04",
		"ss", "05",
	).Replace(pattern)
}
