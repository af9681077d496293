package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xlconv/xlconv-go/pkg/xlconv/models"
)

func TestInput(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		valid bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"blank string", "   ", false},
		{"empty buffer", []byte{}, false},
		{"unsupported type", 42, false},
		{"csv text", "a,b\n1,2", true},
		{"quoted csv line", `"a","b"`, true},
		{"buffer", []byte{0x50, 0x4b}, true},
		{"plain path", "/tmp/data.xlsx", true},
		{"malformed url", "https://", false},
		{"path with forbidden characters", `/tmp/what?.xlsx`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Input(tt.in)
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				assert.NotEmpty(t, res.Errors)
			}
		})
	}
}

func TestRow_ValidatorErrors(t *testing.T) {
	row := models.Row{"age": int64(-5), "name": "x"}

	res := Row(row, 3, "People", nil, func(value any, column string, rowIndex int) error {
		if column == "age" {
			return errors.New("age must be positive")
		}
		return nil
	})

	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	e := res.Errors[0]
	assert.Equal(t, "People", e.Sheet)
	assert.Equal(t, 3, e.Row)
	assert.Equal(t, "age", e.Column)
	assert.Equal(t, models.SeverityError, e.Severity)
	assert.Equal(t, int64(-5), e.Value)
}

func TestRow_PanickingValidatorIsRecovered(t *testing.T) {
	row := models.Row{"a": 1}

	res := Row(row, 0, "S", func(models.Row, int) error {
		panic("boom")
	}, nil)

	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "boom")
}

func TestRow_NoValidators(t *testing.T) {
	res := Row(models.Row{"a": 1}, 0, "S", nil, nil)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestHeaders(t *testing.T) {
	res := Headers([]string{"name", "name", "__proto__", "a.b", "has space", "1st"}, "S")

	assert.True(t, res.Valid, "header findings are warnings only")
	assert.Empty(t, res.Errors)

	var messages []string
	for _, w := range res.Warnings {
		messages = append(messages, w.Message)
	}
	assert.Len(t, res.Warnings, 5)
	assert.Contains(t, messages, "duplicate header")
}

func TestHeaders_CleanHeadersNoWarnings(t *testing.T) {
	res := Headers([]string{"name", "age", "email"}, "S")
	assert.Empty(t, res.Warnings)
}
