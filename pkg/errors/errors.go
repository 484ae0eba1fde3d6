// Package errors defines the structured error types used across ledgermatch.
//
// Every failure surfaced to a caller is a *ReconcilerError carrying a
// category, a stable code, optional context values and a suggestion for
// fixing the problem. Row-level normalization failures are aggregated into
// a RowErrors value so a single bad row never aborts a whole batch.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory groups errors by the subsystem that produced them.
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryParse         ErrorCategory = "parse"
	CategoryProcessing    ErrorCategory = "processing"
	CategoryFile          ErrorCategory = "file"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode identifies a specific failure within a category.
type ErrorCode string

const (
	// Validation errors
	CodeMissingField ErrorCode = "missing_field"
	CodeInvalidDate  ErrorCode = "invalid_date"
	CodeNoValidData  ErrorCode = "no_valid_data"

	// Configuration errors
	CodeUnsupportedDateFormat ErrorCode = "unsupported_date_format"
	CodeUnsupportedPolicy     ErrorCode = "unsupported_policy"
	CodeInvalidConfig         ErrorCode = "invalid_config"

	// Parse errors
	CodeMissingColumn ErrorCode = "missing_column"
	CodeInvalidFormat ErrorCode = "invalid_format"

	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"

	// Processing / internal errors
	CodeProcessingError ErrorCode = "processing_error"
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// Context carries additional key/value information about the error.
type Context map[string]interface{}

// ReconcilerError is the base error type for all ledgermatch errors.
type ReconcilerError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Error implements the error interface.
func (e *ReconcilerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *ReconcilerError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns the process exit code appropriate for the error.
func (e *ReconcilerError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryProcessing, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext attaches a context value to the error.
func (e *ReconcilerError) WithContext(key string, value interface{}) *ReconcilerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion attaches a human-readable fix suggestion.
func (e *ReconcilerError) WithSuggestion(suggestion string) *ReconcilerError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ReconcilerError.
func New(category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	return &ReconcilerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ReconcilerError context.
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	if err == nil {
		return nil
	}

	return &ReconcilerError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// ValidationError creates a validation error for a specific field.
func ValidationError(code ErrorCode, field string, value interface{}, err error) *ReconcilerError {
	var message, suggestion string

	switch code {
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field '%s': %v", field, value)
		suggestion = "check the value against the configured date format"
	case CodeNoValidData:
		message = "no valid data found"
		suggestion = "verify the input rows carry the required fields in the expected formats"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	result := newOrWrap(err, CategoryValidation, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration error. Configuration errors are
// fatal for the whole call: a bad setting would miscanonicalize every row.
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *ReconcilerError {
	var message, suggestion string

	switch code {
	case CodeUnsupportedDateFormat:
		message = fmt.Sprintf("unsupported date format: %v", value)
		suggestion = "use one of YYYY-MM-DD, DD/MM/YYYY, MM/DD/YYYY, DD-MM-YYYY, MM-DD-YYYY"
	case CodeUnsupportedPolicy:
		message = fmt.Sprintf("unsupported matching policy: %v", value)
		suggestion = "use 'exact' or 'scored'"
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	result := newOrWrap(err, CategoryConfiguration, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// DataProcessingError creates a processing error. It wraps failures that
// input validation did not anticipate; these are always surfaced, never
// silently swallowed.
func DataProcessingError(operation string, err error) *ReconcilerError {
	message := fmt.Sprintf("processing error during %s", operation)

	result := newOrWrap(err, CategoryProcessing, CodeProcessingError, message)
	return result.
		WithSuggestion("review the input data and configuration").
		WithContext("operation", operation)
}

// ParseError creates a parsing error tied to a file position.
func ParseError(code ErrorCode, file string, line int, column string, value string, err error) *ReconcilerError {
	var message, suggestion string

	switch code {
	case CodeMissingColumn:
		message = fmt.Sprintf("missing required column '%s' in file %s", column, file)
		suggestion = "verify the file has all required columns with correct headers"
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in file %s at line %d, column '%s': '%s'", file, line, column, value)
		suggestion = "check the data format and ensure it matches the expected structure"
	default:
		message = fmt.Sprintf("parse error in file %s at line %d", file, line)
		suggestion = "check the file format and data integrity"
	}

	result := newOrWrap(err, CategoryParse, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("line", line).
		WithContext("column", column)
}

// FileError creates a file access error.
func FileError(code ErrorCode, path string, err error) *ReconcilerError {
	var message, suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	result := newOrWrap(err, CategoryFile, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// InternalError creates an internal error for programming defects.
func InternalError(operation string, err error) *ReconcilerError {
	message := fmt.Sprintf("unexpected error during %s", operation)

	result := newOrWrap(err, CategoryInternal, CodeUnexpectedError, message)
	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

func newOrWrap(err error, category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	if err != nil {
		return Wrap(err, category, code, message)
	}
	return New(category, code, message)
}

// RowError ties a ReconcilerError to the input row that produced it.
type RowError struct {
	Row int              `json:"row"`
	Err *ReconcilerError `json:"error"`
}

func (re *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", re.Row, re.Err.Error())
}

// RowErrors aggregates per-row failures from a batch operation.
type RowErrors struct {
	Total  int         `json:"total"`
	ByCode map[ErrorCode]int `json:"by_code"`
	Errors []*RowError `json:"errors"`
}

// NewRowErrors creates an empty RowErrors aggregate.
func NewRowErrors() *RowErrors {
	return &RowErrors{
		ByCode: make(map[ErrorCode]int),
		Errors: make([]*RowError, 0),
	}
}

// Add records a failure for the given input row.
func (re *RowErrors) Add(row int, err *ReconcilerError) {
	re.Errors = append(re.Errors, &RowError{Row: row, Err: err})
	re.ByCode[err.Code]++
	re.Total++
}

// HasErrors reports whether any row failed.
func (re *RowErrors) HasErrors() bool {
	return re != nil && re.Total > 0
}

// Error returns a formatted summary of the aggregated failures.
func (re *RowErrors) Error() string {
	if re.Total == 0 {
		return "no errors"
	}

	if re.Total == 1 {
		return re.Errors[0].Error()
	}

	var codes []string
	for code, count := range re.ByCode {
		codes = append(codes, fmt.Sprintf("%s: %d", code, count))
	}

	return fmt.Sprintf("%d rows failed (%s)", re.Total, strings.Join(codes, ", "))
}

// Sample returns up to max formatted row errors for logging and reports.
func (re *RowErrors) Sample(max int) []string {
	if len(re.Errors) == 0 {
		return nil
	}

	limit := len(re.Errors)
	if max > 0 && max < limit {
		limit = max
	}

	samples := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		samples = append(samples, re.Errors[i].Error())
	}

	return samples
}

// IsReconcilerError checks if an error is a ReconcilerError.
func IsReconcilerError(err error) bool {
	_, ok := err.(*ReconcilerError)
	return ok
}

// AsReconcilerError extracts a ReconcilerError from an error chain.
func AsReconcilerError(err error) (*ReconcilerError, bool) {
	var reconcilerErr *ReconcilerError
	if errors.As(err, &reconcilerErr) {
		return reconcilerErr, true
	}
	return nil, false
}
