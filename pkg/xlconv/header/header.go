// Package header normalizes raw header cells into clean, unique row
// keys and recognizes the column-letter misexport produced by some
// spreadsheet export tools.
package header

import (
	"fmt"
	"regexp"
	"strings"
)

// columnLetterRe matches bare spreadsheet column letters ("A", "AB").
var columnLetterRe = regexp.MustCompile(`^[A-Z]{1,2}$`)

// columnLetterThreshold is the share of bare-letter headers above which
// a header row is considered a column-letter misexport.
const columnLetterThreshold = 0.7

// Resolver resolves the header cells of one sheet pass. It hands out
// unique placeholders for blank cells; a fresh Resolver is used per
// pass so placeholder numbering restarts at 1.
type Resolver struct {
	emptySeq int
}

// NewResolver returns a Resolver for a single header pass.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve normalizes one raw header cell: embedded line breaks are
// dropped, surrounding whitespace trimmed, and blank cells replaced by
// a unique "Empty_Header_<n>" placeholder.
func (r *Resolver) Resolve(raw string) string {
	cleaned := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(raw)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		r.emptySeq++
		return fmt.Sprintf("Empty_Header_%d", r.emptySeq)
	}
	return cleaned
}

// LooksLikeColumnLetters reports whether more than 70% of the resolved
// headers are bare 1–2 letter tokens, the signature of an export that
// wrote column letters ("A", "B", ...) where the real headers belong.
func LooksLikeColumnLetters(headers []string) bool {
	if len(headers) == 0 {
		return false
	}
	letters := 0
	for _, h := range headers {
		if columnLetterRe.MatchString(h) {
			letters++
		}
	}
	return float64(letters)/float64(len(headers)) > columnLetterThreshold
}

// EnsureUnique suffixes repeated headers with "_<n>", where n counts
// prior occurrences. The first occurrence keeps its original name, so
// ["name","name"] becomes ["name","name_1"]. The suffix advances past
// names already taken, so a literal "name_1" elsewhere in the row never
// collides with a generated one.
func EnsureUnique(headers []string) []string {
	seen := make(map[string]int, len(headers))
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		n := seen[h]
		name := h
		for n > 0 {
			name = fmt.Sprintf("%s_%d", h, n)
			if seen[name] == 0 {
				break
			}
			n++
		}
		if name == h {
			seen[h]++
		} else {
			seen[h] = n + 1
			seen[name]++
		}
		out = append(out, name)
	}
	return out
}

// ColumnLabel returns the spreadsheet letter label for a 1-based
// column number: 1 → "A", 26 → "Z", 27 → "AA".
func ColumnLabel(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}
