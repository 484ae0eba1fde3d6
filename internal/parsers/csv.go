// Package parsers reads ledger CSV files into raw records for the
// reconciliation engine.
//
// The engine itself never touches file bytes; this package is the
// ingestion collaborator that turns a CSV file into the string-keyed rows
// the record normalizer consumes. Header names are matched
// case-insensitively and mapped onto the canonical field names, so files
// with "Transaction_Number" or "AMOUNT" columns load without
// preprocessing.
package parsers

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"ledgermatch/internal/models"
	"ledgermatch/pkg/errors"
	"ledgermatch/pkg/logger"
)

// RequiredColumns are the headers a ledger file must carry.
var RequiredColumns = []string{
	models.FieldTransactionNumber,
	models.FieldTransactionType,
	models.FieldAmount,
	models.FieldIssueDate,
	models.FieldStatus,
}

// OptionalColumns are recognized but not required.
var OptionalColumns = []string{
	models.FieldDueDate,
	models.FieldReference,
}

// Config controls CSV reading behavior.
type Config struct {
	// Delimiter separates fields. Defaults to a comma.
	Delimiter rune

	// Comment, when non-zero, marks lines to skip.
	Comment rune

	// SkipEmptyRows drops rows whose fields are all empty.
	SkipEmptyRows bool

	// TrimLeadingSpace strips leading whitespace in fields.
	TrimLeadingSpace bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Delimiter:        ',',
		SkipEmptyRows:    true,
		TrimLeadingSpace: true,
	}
}

// LedgerParser reads one side's CSV file into raw records.
type LedgerParser struct {
	config *Config
	logger logger.Logger
}

// NewLedgerParser creates a parser with the given configuration. A nil
// config selects the defaults.
func NewLedgerParser(config *Config) *LedgerParser {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Delimiter == 0 {
		config.Delimiter = ','
	}

	return &LedgerParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("ledger_parser"),
	}
}

// ParseFile reads the CSV file at path into raw records, one per data row,
// in file order.
func (p *LedgerParser) ParseFile(ctx context.Context, path string) ([]models.RawRecord, error) {
	p.logger.WithField("file_path", path).Debug("Opening ledger file")

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeProcessingError, path, err)
	}
	defer file.Close()

	records, err := p.Parse(ctx, file, path)
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logger.Fields{
		"file_path": path,
		"rows":      len(records),
	}).Info("Parsed ledger file")

	return records, nil
}

// Parse reads CSV data from r, checking ctx between rows so a cancelled
// call stops mid-file. The name is used in error messages only.
func (p *LedgerParser) Parse(ctx context.Context, r io.Reader, name string) ([]models.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.config.Delimiter
	reader.Comment = p.config.Comment
	reader.TrimLeadingSpace = p.config.TrimLeadingSpace
	reader.FieldsPerRecord = -1

	columns, err := p.readHeader(reader, name)
	if err != nil {
		return nil, err
	}

	var records []models.RawRecord
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.DataProcessingError("csv parsing", err)
		}

		line++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.ParseError(
				errors.CodeInvalidFormat, name, line, "", "", err)
		}

		if p.config.SkipEmptyRows && isEmptyRow(row) {
			continue
		}

		record := make(models.RawRecord, len(columns))
		for field, idx := range columns {
			if idx < len(row) {
				record[field] = row[idx]
			}
		}
		records = append(records, record)
	}

	return records, nil
}

// readHeader reads the header row and maps canonical field names onto
// column indexes. All required columns must be present.
func (p *LedgerParser) readHeader(reader *csv.Reader, name string) (map[string]int, error) {
	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.ParseError(
			errors.CodeInvalidFormat, name, 1, "", "", io.ErrUnexpectedEOF).
			WithSuggestion("the file is empty; a header row is required")
	}
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, name, 1, "", "", err)
	}

	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}

	columns := make(map[string]int)
	for _, required := range RequiredColumns {
		idx, ok := byName[required]
		if !ok {
			return nil, errors.ParseError(
				errors.CodeMissingColumn, name, 1, required, "", nil)
		}
		columns[required] = idx
	}
	for _, optional := range OptionalColumns {
		if idx, ok := byName[optional]; ok {
			columns[optional] = idx
		}
	}

	return columns, nil
}

func isEmptyRow(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
