package csvconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   rune
	}{
		{"comma", "a,b,c\n1,2,3\n4,5,6", ','},
		{"semicolon", "a;b;c\n1;2;3\n4;5;6", ';'},
		{"tab", "a\tb\tc\n1\t2\t3", '\t'},
		{"pipe", "a|b|c\n1|2|3", '|'},
		{"single line defaults to comma", "a;b;c", ','},
		{"empty defaults to comma", "", ','},
		{"quoted delimiters ignored", "\"a;b\",c\n\"d;e\",f\n\"g;h\",i", ','},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter(tt.sample))
		})
	}
}

func TestDetectDelimiter_PrefersConsistency(t *testing.T) {
	// Semicolon splits every line identically; comma appears only once.
	sample := "a;b;c,d\ne;f;g\nh;i;j"
	assert.Equal(t, ';', DetectDelimiter(sample))
}

func TestLooksLikeCSV(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"plain csv", "a,b,c\n1,2,3", true},
		{"semicolon csv", "a;b\n1;2", true},
		{"file path", "/tmp/data/input.xlsx", false},
		{"relative path", "./files/report.csv", false},
		{"windows path", `C:\Users\data\report.xlsx`, false},
		{"url", "https://example.com/data.csv", false},
		{"empty", "", false},
		{"prose without delimiters", "just a sentence", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLikeCSV(tt.text))
		})
	}
}
