package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"ledgermatch/pkg/errors"
	"ledgermatch/pkg/logger"
)

// ErrorHandler turns errors into user-facing messages and exit codes.
type ErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewErrorHandler creates a CLI error handler.
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// Handle reports the error and returns the process exit code.
func (h *ErrorHandler) Handle(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if recErr, ok := errors.AsReconcilerError(err); ok {
		return h.handleReconcilerError(recErr)
	}
	return h.handleGenericError(err)
}

func (h *ErrorHandler) handleReconcilerError(err *errors.ReconcilerError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", categoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

func (h *ErrorHandler) handleGenericError(err error) int {
	if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory") {
		fmt.Fprintf(os.Stderr, "Error: file not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: check if the file path is correct and the file exists\n")
		return 2
	}
	if os.IsPermission(err) || strings.Contains(err.Error(), "permission denied") {
		fmt.Fprintf(os.Stderr, "Error: permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: check file permissions and ensure you have read access\n")
		return 2
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if !h.verbose {
		fmt.Fprintf(os.Stderr, "Run with --verbose for more details\n")
	}
	return 1
}

func categoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct
• Ensure you have proper permissions to access the file`

	case errors.CategoryParse:
		return `Parse error help:
• Verify the CSV file structure and column headers
• Required columns: transaction_number, transaction_type, amount, issue_date, status
• Check the delimiter matches the file (--delimiter)`

	case errors.CategoryValidation:
		return `Validation error help:
• Check that all required fields have values
• Verify dates match the declared date format for their side
• Amounts may carry currency symbols; unparseable ones become 0`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Use 'ledgermatch match --help' to see all available options
• Supported date formats: YYYY-MM-DD, DD/MM/YYYY, MM/DD/YYYY, DD-MM-YYYY, MM-DD-YYYY`

	default:
		return `For more help:
• Use 'ledgermatch --help' for general help
• Use 'ledgermatch match --help' for command-specific help`
	}
}
