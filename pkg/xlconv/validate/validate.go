// Package validate performs structural checks on conversion input,
// extracted rows, and resolved headers. Findings accumulate as errors
// or warnings; warnings never fail a conversion.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/xlconv/xlconv-go/pkg/xlconv/models"
)

// pathDenylist are characters that cannot appear in a file path on any
// supported platform.
const pathDenylist = `<>"|?*`

var (
	urlShapeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	// pathShapeRe recognizes absolute and relative path shapes.
	pathShapeRe = regexp.MustCompile(`^(\.{0,2}[/\\]|[a-zA-Z]:[/\\]|~[/\\]|/)[^\x00]*$`)
)

// reservedHeaders are names that collide with object internals in
// downstream JSON consumers and script runtimes.
var reservedHeaders = map[string]bool{
	"__proto__":        true,
	"constructor":      true,
	"prototype":        true,
	"eval":             true,
	"hasownproperty":   true,
	"__definegetter__": true,
	"__lookupgetter__": true,
}

// Result is the outcome of one validation call.
type Result struct {
	Valid    bool
	Errors   []models.ValidationError
	Warnings []models.ValidationError
}

// RowFunc is a user-supplied whole-row validator.
type RowFunc func(row models.Row, index int) error

// CellFunc is a user-supplied per-cell validator.
type CellFunc func(value any, column string, rowIndex int) error

// Input rejects conversion input the pipeline cannot work with: nil,
// unsupported types, empty text or buffers, malformed URLs, and
// path-like strings containing forbidden characters.
func Input(input any) Result {
	res := Result{Valid: true}
	fail := func(msg string) {
		res.Valid = false
		res.Errors = append(res.Errors, models.ValidationError{
			Message:  msg,
			Severity: models.SeverityError,
		})
	}

	switch v := input.(type) {
	case nil:
		fail("input is nil")
	case string:
		validateStringInput(v, fail)
	case []byte:
		if len(v) == 0 {
			fail("input buffer is empty")
		}
	default:
		fail(fmt.Sprintf("unsupported input type %T", input))
	}
	return res
}

func validateStringInput(s string, fail func(string)) {
	if strings.TrimSpace(s) == "" {
		fail("input string is empty")
		return
	}
	// Single-line strings may be references rather than content.
	if strings.ContainsAny(s, "\r\n") {
		return
	}
	if urlShapeRe.MatchString(s) {
		u, err := url.ParseRequestURI(s)
		if err != nil || u.Host == "" {
			fail("malformed URL")
		}
		return
	}
	// The denylist applies to path-shaped strings only; quoted CSV
	// content legitimately carries quote characters.
	if pathShapeRe.MatchString(s) && strings.ContainsAny(s, pathDenylist) {
		fail("path contains characters not allowed in a file name")
	}
}

// Row runs the optional row and cell validators against one row. A
// panicking validator is recovered and converted into a validation
// error carrying sheet/row/column context; it never aborts the
// pipeline.
func Row(row models.Row, index int, sheet string, rowFn RowFunc, cellFn CellFunc) Result {
	res := Result{Valid: true}
	record := func(column, msg string, value any) {
		res.Valid = false
		res.Errors = append(res.Errors, models.ValidationError{
			Sheet:    sheet,
			Row:      index,
			Column:   column,
			Message:  msg,
			Severity: models.SeverityError,
			Value:    value,
		})
	}

	if rowFn != nil {
		if err := callRowValidator(rowFn, row, index); err != nil {
			record("", err.Error(), nil)
		}
	}

	if cellFn != nil {
		for column, value := range row {
			if err := callCellValidator(cellFn, value, column, index); err != nil {
				record(column, err.Error(), value)
			}
		}
	}
	return res
}

func callRowValidator(fn RowFunc, row models.Row, index int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("row validator panicked: %v", r)
		}
	}()
	return fn(row, index)
}

func callCellValidator(fn CellFunc, value any, column string, index int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cell validator panicked: %v", r)
		}
	}()
	return fn(value, column, index)
}

// Headers flags duplicate headers and names that are unsafe or awkward
// for downstream consumers. All findings are warnings; header problems
// never fail a conversion.
func Headers(headers []string, sheet string) Result {
	res := Result{Valid: true}
	warn := func(column, msg string) {
		res.Warnings = append(res.Warnings, models.ValidationError{
			Sheet:    sheet,
			Column:   column,
			Message:  msg,
			Severity: models.SeverityWarning,
		})
	}

	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if seen[h] {
			warn(h, "duplicate header")
		}
		seen[h] = true

		switch {
		case reservedHeaders[strings.ToLower(h)]:
			warn(h, "header collides with a reserved name")
		case strings.Contains(h, "."):
			warn(h, "header contains dots; keys will nest when nested objects are enabled")
		case strings.Contains(h, " "):
			warn(h, "header contains spaces")
		case leadingDigit(h):
			warn(h, "header starts with a digit")
		}
	}
	return res
}

func leadingDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
