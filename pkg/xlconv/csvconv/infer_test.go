package csvconv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInfer_DecisionOrder(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"true token", "true", true},
		{"yes token", "YES", true},
		{"y token", "y", true},
		{"false token", "false", false},
		{"no token", "No", false},
		{"n token", "N", false},
		{"integer", "42", int64(42)},
		{"negative integer", "-7", int64(-7)},
		{"float", "3.14", 3.14},
		{"scientific", "1e3", float64(1000)},
		{"year is number not date", "2024", int64(2024)},
		{"plain string", "hello", "hello"},
		{"trimmed string", "  hello  ", "hello"},
		{"not a number", "12abc", "12abc"},
		{"inf is a string", "Inf", "Inf"},
		{"nan is a string", "NaN", "NaN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(tt.in))
		})
	}
}

func TestInfer_Dates(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"01/15/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"01-15-2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"1/2/2024", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(tt.in))
		})
	}
}

func TestInfer_InvalidCalendarDateStaysString(t *testing.T) {
	assert.Equal(t, "13/45/2024", Infer("13/45/2024"))
	assert.Equal(t, "2024-02-30", Infer("2024-02-30"))
}
