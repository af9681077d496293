// Package main provides the CLI entry point for xlconv-go.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xlconv/xlconv-go/pkg/xlconv"
	"github.com/xlconv/xlconv-go/pkg/xlconv/csvconv"
	"github.com/xlconv/xlconv-go/pkg/xlconv/models"
	"github.com/xlconv/xlconv-go/pkg/xlconv/output"
	"github.com/xlconv/xlconv-go/pkg/xlconv/transform"
)

var (
	outputPath       string
	pretty           bool
	sheetsDir        string
	sheetNames       []string
	sheetIndices     []int
	allSheets        bool
	headerRow        int
	noHeader         bool
	dateFormat       string
	delimiter        string
	nested           bool
	includeSheetName bool
	keepEmpty        bool
	valueExpr        string
	headerExpr       string
	concurrency      int
	logLevel         string
	logFormat        string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xlconv [input.xlsx|input.csv]",
		Short: "Convert spreadsheet files to structured JSON",
		Long: `xlconv converts Excel workbooks and CSV files into structured JSON
records, with type inference, header normalization, data cleaning and
optional nested-object reconstruction.`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.Flags().StringVar(&sheetsDir, "sheets-dir", "", "Directory for per-sheet output files")
	rootCmd.Flags().StringSliceVar(&sheetNames, "sheet", nil, "Sheet name to process (repeatable)")
	rootCmd.Flags().IntSliceVar(&sheetIndices, "sheet-index", nil, "0-based sheet index to process (repeatable)")
	rootCmd.Flags().BoolVar(&allSheets, "all", false, "Process every sheet")
	rootCmd.Flags().IntVar(&headerRow, "header-row", 0, "0-based header row offset")
	rootCmd.Flags().BoolVar(&noHeader, "no-header", false, "Key columns by letter label instead of a header row")
	rootCmd.Flags().StringVar(&dateFormat, "date-format", "DD/MM/YYYY", "Date display pattern")
	rootCmd.Flags().StringVar(&delimiter, "delimiter", "", "CSV delimiter override (default: auto-detect)")
	rootCmd.Flags().BoolVar(&nested, "nested", false, "Expand dot-notation columns into nested objects")
	rootCmd.Flags().BoolVar(&includeSheetName, "include-sheet-name", false, "Inject a _sheet field into every row")
	rootCmd.Flags().BoolVar(&keepEmpty, "keep-empty", false, "Keep empty rows and columns")
	rootCmd.Flags().StringVar(&valueExpr, "transform", "", "Value transform expression (sees `value` and `header`)")
	rootCmd.Flags().StringVar(&headerExpr, "header-transform", "", "Header transform expression (sees `header`)")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 4, "Sheet batch width")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format: text, json")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	logger := setupLogger(logLevel, logFormat)

	opts, err := buildOptions(logger)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var input xlconv.Input
	if strings.EqualFold(filepath.Ext(inputPath), ".csv") {
		input = xlconv.TextInput(data)
	} else {
		input = xlconv.BytesInput(data)
	}

	res, err := xlconv.Convert(context.Background(), input, opts)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	jsonData, err := output.ToJSON(res, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if sheetsDir == "" {
		fmt.Println(string(jsonData))
	}

	if sheetsDir != "" {
		if err := writeSheetFiles(res.Sheets, res.Data, sheetsDir); err != nil {
			return fmt.Errorf("failed to write sheet files: %w", err)
		}
	}
	return nil
}

func buildOptions(logger *slog.Logger) (xlconv.Options, error) {
	opts := xlconv.Options{
		HeaderRow:        headerRow,
		NoHeaderRow:      noHeader,
		DateFormat:       dateFormat,
		IncludeSheetName: includeSheetName,
		NestedObjects:    nested,
		Concurrency:      concurrency,
		Logger:           logger,
	}

	switch {
	case allSheets:
		opts.Sheets = xlconv.AllSheets()
	case len(sheetNames) > 0:
		opts.Sheets = xlconv.SheetsByName(sheetNames...)
	case len(sheetIndices) > 0:
		opts.Sheets = xlconv.SheetsByIndex(sheetIndices...)
	default:
		opts.Sheets = xlconv.FirstSheet()
	}

	if keepEmpty {
		f := false
		opts.SkipEmptyRows = &f
		opts.SkipEmptyColumns = &f
	}

	if delimiter != "" {
		opts.CSV = csvconv.Options{Delimiter: []rune(delimiter)[0]}
	}

	if valueExpr != "" {
		fn, err := transform.CompileValue(valueExpr)
		if err != nil {
			return opts, err
		}
		opts.ValueTransform = fn
	}
	if headerExpr != "" {
		fn, err := transform.CompileHeader(headerExpr)
		if err != nil {
			return opts, err
		}
		opts.HeaderTransform = fn
	}
	return opts, nil
}

func writeSheetFiles(sheets map[string][]models.Row, data []models.Row, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	if sheets == nil {
		sheets = map[string][]models.Row{"Sheet1": data}
	}
	for name, rows := range sheets {
		jsonData, err := output.RowsToJSON(rows, pretty)
		if err != nil {
			return err
		}
		filename := filepath.Join(dir, name+".json")
		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return err
		}
	}
	return nil
}

func setupLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
