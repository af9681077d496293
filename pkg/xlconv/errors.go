package xlconv

import (
	"errors"
	"fmt"
)

// ErrInvalidInput indicates input the pipeline cannot work with: nil,
// empty, an unsupported type, or a malformed path/URL.
var ErrInvalidInput = errors.New("invalid input")

// ErrNoSheetsFound indicates a sheet selection that resolved to zero
// sheets.
var ErrNoSheetsFound = errors.New("no sheets found")

// ErrParseFailure indicates the decoder or CSV tokenizer could not
// produce a grid or rows.
var ErrParseFailure = errors.New("parse failure")

// Stage identifies where in the pipeline a conversion failed.
type Stage string

const (
	StageValidating Stage = "validating"
	StageResolving  Stage = "resolving source"
	StageExtracting Stage = "extracting"
	StageCleaning   Stage = "cleaning"
	StageTransform  Stage = "transforming"
	StageNesting    Stage = "nesting"
	StageFinalizing Stage = "finalizing"
)

// ConversionError wraps any failure inside the pipeline with the stage
// and, when sheet-local, the sheet it occurred in. Callers receive
// either a complete result or exactly one ConversionError.
type ConversionError struct {
	Stage Stage
	Sheet string
	Err   error
}

func (e *ConversionError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("conversion failed while %s sheet %q: %v", e.Stage, e.Sheet, e.Err)
	}
	return fmt.Sprintf("conversion failed while %s: %v", e.Stage, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, sheet string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ConversionError
	if errors.As(err, &ce) {
		return err
	}
	return &ConversionError{Stage: stage, Sheet: sheet, Err: err}
}
