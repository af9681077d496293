package models

import "encoding/json"

// Severity ranks a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError is one accumulated validation finding. Warnings never
// block a conversion; they are surfaced through the result metadata.
type ValidationError struct {
	Sheet    string   `json:"sheetName,omitempty"`
	Row      int      `json:"rowIndex"`
	Column   string   `json:"columnName,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Value    any      `json:"invalidValue,omitempty"`
}

// SheetMeta describes one processed sheet. Index is the sheet's
// position in the caller's selection order, not the workbook order.
type SheetMeta struct {
	Name             string `json:"name"`
	Index            int    `json:"index"`
	RowCount         int    `json:"rowCount"`
	ColumnCount      int    `json:"columnCount"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
}

// Metadata aggregates conversion-level information.
type Metadata struct {
	SourceType       string            `json:"sourceType"`
	SourceSize       int64             `json:"sourceSize"`
	Sheets           []SheetMeta       `json:"sheetsProcessed"`
	TotalRows        int               `json:"totalRows"`
	TotalSheets      int               `json:"totalSheets"`
	ProcessingTimeMs int64             `json:"processingTimeMs"`
	ValidationErrors []ValidationError `json:"validationErrors,omitempty"`
}

// ConversionResult is the complete output of one conversion run.
// Exactly one of Data and Sheets is populated: Data for single-sheet
// selections (and CSV input), Sheets for multi-sheet selections.
type ConversionResult struct {
	Data     []Row
	Sheets   map[string][]Row
	Metadata Metadata
}

// MarshalJSON keeps the single-array vs name-keyed-object output shape.
func (r ConversionResult) MarshalJSON() ([]byte, error) {
	payload := struct {
		Data     any      `json:"data"`
		Metadata Metadata `json:"metadata"`
	}{Metadata: r.Metadata}

	if r.Sheets != nil {
		payload.Data = r.Sheets
	} else if r.Data != nil {
		payload.Data = r.Data
	} else {
		payload.Data = []Row{}
	}
	return json.Marshal(payload)
}
