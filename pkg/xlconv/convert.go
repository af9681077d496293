package xlconv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xlconv/xlconv-go/pkg/xlconv/csvconv"
	"github.com/xlconv/xlconv-go/pkg/xlconv/decode"
	"github.com/xlconv/xlconv-go/pkg/xlconv/models"
	"github.com/xlconv/xlconv-go/pkg/xlconv/rows"
	"github.com/xlconv/xlconv-go/pkg/xlconv/sheet"
	"github.com/xlconv/xlconv-go/pkg/xlconv/validate"
)

// csvSheetName is the synthetic sheet name CSV input is reported under.
const csvSheetName = "Sheet1"

// Converter runs the conversion pipeline with one normalized
// configuration. A Converter is safe for sequential reuse; per-run
// state lives on the stack of Convert.
type Converter struct {
	opts options
}

// New builds a Converter, filling defaults for every omitted option.
func New(o Options) *Converter {
	return &Converter{opts: normalizeOptions(o)}
}

// Convert is the package-level convenience entry point.
func Convert(ctx context.Context, input Input, o Options) (*models.ConversionResult, error) {
	return New(o).Convert(ctx, input)
}

// Convert runs the full pipeline: validate input, classify the source,
// extract per sheet (batched for workbooks), clean, transform, nest,
// and assemble metadata. Callers get either a complete result or a
// single wrapped error; there is no partial success.
func (c *Converter) Convert(ctx context.Context, input Input) (*models.ConversionResult, error) {
	start := time.Now()
	log := newErrorLog(c.opts.maxErrors)

	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	src, err := classifySource(input, c.opts.resolver)
	if err != nil {
		return nil, stageErr(StageResolving, "", err)
	}
	c.opts.logger.Debug("source classified",
		"type", src.meta.Type, "size", src.meta.Size)
	// Advisory only: the core always buffers, but callers watching the
	// monitor can switch to a streaming resolver for the next run.
	c.opts.monitor.ShouldUseStreaming(src.meta.Size)

	var result *models.ConversionResult
	if src.meta.Type == "csv" {
		result, err = c.convertCSV(src, log)
	} else {
		result, err = c.convertWorkbook(ctx, src, log)
	}
	if err != nil {
		return nil, err
	}

	result.Metadata.SourceType = src.meta.Type
	result.Metadata.SourceSize = src.meta.Size
	result.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
	result.Metadata.ValidationErrors = log.list()

	c.opts.logger.Info("conversion finished",
		"sheets", result.Metadata.TotalSheets,
		"rows", result.Metadata.TotalRows,
		"elapsed_ms", result.Metadata.ProcessingTimeMs)
	return result, nil
}

func (c *Converter) validateInput(input Input) error {
	var raw any
	switch v := input.(type) {
	case TextInput:
		raw = string(v)
	case BytesInput:
		raw = []byte(v)
	default:
		raw = input
	}
	if res := validate.Input(raw); !res.Valid {
		return stageErr(StageValidating, "",
			fmt.Errorf("%w: %s", ErrInvalidInput, joinMessages(res.Errors)))
	}
	return nil
}

// convertCSV runs the single-sheet CSV pipeline. CSV always produces
// the plain-array result shape.
func (c *Converter) convertCSV(src source, log *errorLog) (*models.ConversionResult, error) {
	sheetStart := time.Now()

	parsed, err := csvconv.Parse(src.csvText, c.opts.csv)
	if err != nil {
		if errors.Is(err, csvconv.ErrInvalidInput) {
			return nil, stageErr(StageExtracting, csvSheetName, fmt.Errorf("%w: %v", ErrInvalidInput, err))
		}
		return nil, stageErr(StageExtracting, csvSheetName, fmt.Errorf("%w: %v", ErrParseFailure, err))
	}
	// Grid extraction renders date cells through the configured layout;
	// CSV-inferred dates must serialize the same way.
	renderDates(parsed, c.opts.dateLayout)

	if len(parsed) > 0 {
		log.add(validate.Headers(rowKeys(parsed[0]), csvSheetName).Warnings...)
	}

	cleaned := rows.Clean(parsed, c.opts.skipEmptyRows, c.opts.skipEmptyColumns, c.opts.ignoreIndexOnlyRows)
	kept, findings := c.validateRows(cleaned, csvSheetName)
	log.add(findings...)
	kept = c.applyTransforms(kept)
	if c.opts.nestedObjects {
		kept = rows.BuildNested(kept)
	}
	if kept == nil {
		kept = []models.Row{}
	}

	elapsed := time.Since(sheetStart)
	c.opts.monitor.RecordMetrics(csvSheetName, len(kept), elapsed)

	meta := models.SheetMeta{
		Name:             csvSheetName,
		Index:            0,
		RowCount:         len(kept),
		ColumnCount:      countColumns(parsed),
		ProcessingTimeMs: elapsed.Milliseconds(),
	}
	return &models.ConversionResult{
		Data: kept,
		Metadata: models.Metadata{
			Sheets:      []models.SheetMeta{meta},
			TotalRows:   len(kept),
			TotalSheets: 1,
		},
	}, nil
}

// sheetOutcome is one sheet's pipeline output. Findings stay
// sheet-local until the batch completes, so the shared error log never
// sees interleaved writes.
type sheetOutcome struct {
	rows     []models.Row
	meta     models.SheetMeta
	findings []models.ValidationError
}

// convertWorkbook decodes the workbook and processes the selected
// sheets in fixed-width batches. A failure in any sheet aborts the
// remaining batches.
func (c *Converter) convertWorkbook(ctx context.Context, src source, log *errorLog) (*models.ConversionResult, error) {
	wb, err := decode.Decode(src.workbook)
	if err != nil {
		return nil, stageErr(StageExtracting, "", fmt.Errorf("%w: %v", ErrParseFailure, err))
	}

	selected := c.opts.sheets.resolve(wb.SheetNames)
	if len(selected) == 0 {
		return nil, stageErr(StageResolving, "", ErrNoSheetsFound)
	}

	batch := c.opts.monitor.OptimalBatchSize(c.opts.concurrency)
	if batch < 1 {
		batch = 1
	}
	c.opts.logger.Debug("processing sheets", "selected", len(selected), "batch", batch)

	outcomes := make([]sheetOutcome, len(selected))
	for lo := 0; lo < len(selected); lo += batch {
		hi := min(lo+batch, len(selected))
		g, _ := errgroup.WithContext(ctx)
		for i := lo; i < hi; i++ {
			g.Go(func() error {
				out, err := c.safeProcessSheet(wb.Sheets[selected[i]], selected[i], i)
				if err != nil {
					return err
				}
				outcomes[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for i := lo; i < hi; i++ {
			log.add(outcomes[i].findings...)
		}
	}

	result := &models.ConversionResult{}
	for _, out := range outcomes {
		result.Metadata.Sheets = append(result.Metadata.Sheets, out.meta)
		result.Metadata.TotalRows += out.meta.RowCount
	}
	result.Metadata.TotalSheets = len(selected)

	if c.opts.sheets.multi() {
		result.Sheets = make(map[string][]models.Row, len(outcomes))
		for _, out := range outcomes {
			result.Sheets[out.meta.Name] = out.rows
		}
	} else {
		result.Data = outcomes[0].rows
	}
	return result, nil
}

// safeProcessSheet shields the batch from panics anywhere in the
// per-sheet pipeline; the panic surfaces as the run's single error.
func (c *Converter) safeProcessSheet(grid *models.Grid, name string, index int) (out sheetOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = stageErr(StageExtracting, name, fmt.Errorf("unexpected failure: %v", r))
		}
	}()
	return c.processSheet(grid, name, index)
}

func (c *Converter) processSheet(grid *models.Grid, name string, index int) (sheetOutcome, error) {
	start := time.Now()

	extracted, hdrs := sheet.Extract(grid, name, c.sheetConfig())

	var findings []models.ValidationError
	if !c.opts.noHeaderRow {
		findings = append(findings, validate.Headers(hdrs.Ordered, name).Warnings...)
	}

	cleaned := rows.Clean(extracted, c.opts.skipEmptyRows, c.opts.skipEmptyColumns, c.opts.ignoreIndexOnlyRows)
	kept, errs := c.validateRows(cleaned, name)
	findings = append(findings, errs...)

	if c.opts.nestedObjects {
		kept = rows.BuildNested(kept)
	}
	if kept == nil {
		kept = []models.Row{}
	}

	elapsed := time.Since(start)
	c.opts.monitor.RecordMetrics(name, len(kept), elapsed)
	c.opts.logger.Debug("sheet processed", "sheet", name, "rows", len(kept))

	return sheetOutcome{
		rows: kept,
		meta: models.SheetMeta{
			Name:             name,
			Index:            index,
			RowCount:         len(kept),
			ColumnCount:      len(hdrs.Ordered),
			ProcessingTimeMs: elapsed.Milliseconds(),
		},
		findings: findings,
	}, nil
}

func (c *Converter) sheetConfig() sheet.Config {
	return sheet.Config{
		HeaderRow:        c.opts.headerRow,
		NoHeader:         c.opts.noHeaderRow,
		DateLayout:       c.opts.dateLayout,
		SkipEmptyRows:    c.opts.skipEmptyRows,
		IncludeSheetName: c.opts.includeSheetName,
		Transform:        c.opts.valueTransform,
		HeaderTransform:  c.opts.headerTransform,
	}
}

// validateRows runs the configured row/cell validators. Failing rows
// stay in the output unless continue-on-error is disabled.
func (c *Converter) validateRows(in []models.Row, sheetName string) ([]models.Row, []models.ValidationError) {
	if !c.opts.validateTypes || (c.opts.rowValidator == nil && c.opts.cellValidator == nil) {
		return in, nil
	}

	var findings []models.ValidationError
	kept := make([]models.Row, 0, len(in))
	for i, row := range in {
		res := validate.Row(row, i, sheetName, c.opts.rowValidator, c.opts.cellValidator)
		findings = append(findings, res.Errors...)
		if res.Valid || c.opts.continueOnError {
			kept = append(kept, row)
		}
	}
	return kept, findings
}

// applyTransforms rewrites CSV rows through the configured hooks. Grid
// extraction applies these per cell already; CSV rows pass through
// here instead.
func (c *Converter) applyTransforms(in []models.Row) []models.Row {
	if !c.opts.hasValueTransform && !c.opts.hasHeaderTransform {
		return in
	}
	out := make([]models.Row, len(in))
	for i, row := range in {
		next := make(models.Row, len(row))
		for k, v := range row {
			if c.opts.hasValueTransform {
				v = c.opts.valueTransform(v, k)
			}
			if c.opts.hasHeaderTransform {
				k = c.opts.headerTransform(k)
			}
			next[k] = v
		}
		out[i] = next
	}
	return out
}

// ParseCSV runs the CSV pipeline only — parse, clean, transform, nest —
// and returns the row records without metadata.
func ParseCSV(text string, o Options) ([]models.Row, error) {
	c := New(o)
	res, err := c.convertCSV(source{
		meta:    SourceMeta{Type: "csv", Size: int64(len(text))},
		csvText: text,
	}, newErrorLog(c.opts.maxErrors))
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// ExtractSheet runs the grid pipeline for one decoded sheet and
// returns the row records without metadata.
func ExtractSheet(grid *models.Grid, name string, o Options) ([]models.Row, error) {
	c := New(o)
	out, err := c.safeProcessSheet(grid, name, 0)
	if err != nil {
		return nil, err
	}
	return out.rows, nil
}

// errorLog is the run-scoped, append-only validation log, capped at
// the configured maximum.
type errorLog struct {
	max     int
	entries []models.ValidationError
}

func newErrorLog(max int) *errorLog {
	return &errorLog{max: max}
}

func (l *errorLog) add(errs ...models.ValidationError) {
	for _, e := range errs {
		if len(l.entries) >= l.max {
			return
		}
		l.entries = append(l.entries, e)
	}
}

func (l *errorLog) list() []models.ValidationError {
	return l.entries
}

func joinMessages(errs []models.ValidationError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

func renderDates(in []models.Row, layout string) {
	for _, row := range in {
		for k, v := range row {
			if t, ok := v.(time.Time); ok {
				row[k] = t.Format(layout)
			}
		}
	}
}

func rowKeys(r models.Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}

func countColumns(parsed []models.Row) int {
	if len(parsed) == 0 {
		return 0
	}
	return len(parsed[0])
}
