package csvconv

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xlconv/xlconv-go/pkg/xlconv/header"
	"github.com/xlconv/xlconv-go/pkg/xlconv/models"
)

// ErrInvalidInput indicates content that cannot be parsed as CSV text.
var ErrInvalidInput = errors.New("invalid csv input")

// utf8BOM is the byte-order mark some Windows tools prepend.
const utf8BOM = "\xef\xbb\xbf"

// Options configures CSV parsing. The zero value auto-detects the
// delimiter, uses `"` for quoting, and infers field types.
type Options struct {
	// Delimiter overrides auto-detection when non-zero.
	Delimiter rune
	// Quote is the quote character; 0 means `"`.
	Quote rune
	// Comment marks lines to drop, matched at line start after
	// trimming. Empty disables comment handling.
	Comment string
	// RawStrings disables type inference; every field stays a string.
	RawStrings bool
}

// Parse converts CSV text into row records. The first retained line is
// the header line; data lines are padded or truncated to the header
// width, and every field passes through type inference unless
// disabled. Header-only content yields an empty, non-nil slice.
func Parse(content string, opts Options) ([]models.Row, error) {
	content = strings.TrimPrefix(content, utf8BOM)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidInput)
	}

	lines := retainedLines(content, opts.Comment)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no data lines", ErrInvalidInput)
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = DetectDelimiter(strings.Join(lines, "\n"))
	}
	quote := opts.Quote
	if quote == 0 {
		quote = '"'
	}

	headers := header.EnsureUnique(headerFields(lines[0], delim, quote))

	rows := make([]models.Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := splitFields(line, delim, quote)
		row := make(models.Row, len(headers))
		for i, h := range headers {
			var raw string
			if i < len(fields) {
				raw = fields[i]
			}
			if opts.RawStrings {
				row[h] = strings.TrimSpace(raw)
			} else {
				row[h] = Infer(raw)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func retainedLines(content, comment string) []string {
	var lines []string
	for _, line := range splitLines(content) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if comment != "" && strings.HasPrefix(trimmed, comment) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func headerFields(line string, delim, quote rune) []string {
	fields := splitFields(line, delim, quote)
	r := header.NewResolver()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = r.Resolve(f)
	}
	return out
}

// splitFields tokenizes one line. A doubled quote character inside a
// quoted span is an escaped literal quote; an unescaped quote toggles
// quoting; the delimiter ends a field only outside quotes.
func splitFields(line string, delim, quote rune) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == quote:
			if inQuotes && i+1 < len(runes) && runes[i+1] == quote {
				field.WriteRune(quote)
				i++
			} else {
				inQuotes = !inQuotes
			}
		case r == delim && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	fields = append(fields, field.String())
	return fields
}
