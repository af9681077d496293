package csvconv

import (
	"regexp"
	"strings"
)

// candidateDelimiters in tie-break order: the first candidate wins a
// scoring tie.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// sampleLineLimit caps how many non-blank lines feed delimiter scoring.
const sampleLineLimit = 10

// consistencyFloor is the minimum per-delimiter consistency for text
// to be classified as CSV.
const consistencyFloor = 0.8

var (
	urlRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://\S+$`)
	// pathRe matches absolute and relative file-path shapes, both
	// POSIX and Windows.
	pathRe = regexp.MustCompile(`^(\.{0,2}[/\\]|[a-zA-Z]:[/\\]|~[/\\])?[\w .\-()/\\]+\.\w{1,8}$`)
)

// DetectDelimiter picks the most plausible delimiter for the sample.
// Each candidate is scored 0.7×consistency + 0.3×richness over the
// field counts of the first ten non-blank lines; fewer than two lines
// default to comma.
func DetectDelimiter(sample string) rune {
	lines := sampleLines(sample)
	if len(lines) < 2 {
		return ','
	}

	best := ','
	bestScore := -1.0
	for _, delim := range candidateDelimiters {
		score := scoreDelimiter(lines, delim)
		if score > bestScore {
			best = delim
			bestScore = score
		}
	}
	return best
}

// LooksLikeCSV reports whether text is plausibly CSV content rather
// than a file path or URL. Text qualifies when some candidate
// delimiter splits the sampled lines with consistency above 0.8 and at
// least one line yields more than one field.
func LooksLikeCSV(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if !strings.ContainsAny(trimmed, "\r\n") && (urlRe.MatchString(trimmed) || pathRe.MatchString(trimmed)) {
		return false
	}

	lines := sampleLines(text)
	if len(lines) == 0 {
		return false
	}
	for _, delim := range candidateDelimiters {
		counts := fieldCounts(lines, delim)
		if consistency(counts) <= consistencyFloor {
			continue
		}
		for _, n := range counts {
			if n > 1 {
				return true
			}
		}
	}
	return false
}

func sampleLines(sample string) []string {
	var lines []string
	for _, line := range splitLines(sample) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == sampleLineLimit {
			break
		}
	}
	return lines
}

func scoreDelimiter(lines []string, delim rune) float64 {
	counts := fieldCounts(lines, delim)
	return 0.7*consistency(counts) + 0.3*richness(counts)
}

// fieldCounts returns the per-line field count for delim, ignoring
// delimiters inside quoted spans.
func fieldCounts(lines []string, delim rune) []float64 {
	counts := make([]float64, len(lines))
	for i, line := range lines {
		counts[i] = float64(countFields(line, delim))
	}
	return counts
}

func countFields(line string, delim rune) int {
	fields := 1
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == delim && !inQuotes:
			fields++
		}
	}
	return fields
}

// consistency is 1 − variance/mean of the field counts, floored at
// zero. A mean of one field per line (delimiter never appears) scores
// zero.
func consistency(counts []float64) float64 {
	m := mean(counts)
	if m <= 1 {
		return 0
	}
	v := 0.0
	for _, c := range counts {
		d := c - m
		v += d * d
	}
	v /= float64(len(counts))
	if s := 1 - v/m; s > 0 {
		return s
	}
	return 0
}

// richness rewards wider rows, saturating at five fields per line.
func richness(counts []float64) float64 {
	m := mean(counts) / 5
	if m > 1 {
		return 1
	}
	return m
}

func mean(counts []float64) float64 {
	if len(counts) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		sum += c
	}
	return sum / float64(len(counts))
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}
