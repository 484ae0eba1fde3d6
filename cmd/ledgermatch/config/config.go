// Package config translates CLI flag values into engine configurations.
package config

import (
	"ledgermatch/internal/matcher"
	"ledgermatch/internal/models"
	"ledgermatch/internal/parsers"
	"ledgermatch/internal/reconciler"
	"ledgermatch/internal/reporter"
	"ledgermatch/pkg/errors"
)

// dateFormatAliases maps common CLI spellings onto the supported format
// tags, so --left-date-format accepts both "YYYY-MM-DD" and "iso".
var dateFormatAliases = map[string]models.DateFormat{
	"iso":      models.DateFormatISO,
	"dmy":      models.DateFormatDMYSlash,
	"mdy":      models.DateFormatMDYSlash,
	"dmy-dash": models.DateFormatDMYDash,
	"mdy-dash": models.DateFormatMDYDash,
}

// ResolveDateFormat converts a flag value into a DateFormat.
func ResolveDateFormat(value string) (models.DateFormat, error) {
	if format, ok := dateFormatAliases[value]; ok {
		return format, nil
	}
	format := models.DateFormat(value)
	if !format.IsValid() {
		return "", errors.ConfigurationError(
			errors.CodeUnsupportedDateFormat, "date_format", value, nil).
			WithSuggestion("supported formats: YYYY-MM-DD, DD/MM/YYYY, MM/DD/YYYY, DD-MM-YYYY, MM-DD-YYYY")
	}
	return format, nil
}

// ResolvePolicy converts a flag value into a matching policy.
func ResolvePolicy(value string) (matcher.Policy, error) {
	policy := matcher.Policy(value)
	if !policy.IsValid() {
		return "", errors.ConfigurationError(
			errors.CodeUnsupportedPolicy, "policy", value, nil).
			WithSuggestion("supported policies: exact, scored")
	}
	return policy, nil
}

// ResolveConvention converts a flag value into a sign convention. Empty
// means default per policy.
func ResolveConvention(value string) (models.SignConvention, error) {
	if value == "" {
		return "", nil
	}
	convention := models.SignConvention(value)
	if !convention.IsValid() {
		return "", errors.ConfigurationError(
			errors.CodeInvalidConfig, "sign_convention", value, nil).
			WithSuggestion("supported conventions: mirrored, opposite")
	}
	return convention, nil
}

// CreateParserConfig creates the CSV parser configuration.
func CreateParserConfig(delimiter string) (*parsers.Config, error) {
	config := parsers.DefaultConfig()
	if delimiter != "" {
		runes := []rune(delimiter)
		if len(runes) != 1 {
			return nil, errors.ConfigurationError(
				errors.CodeInvalidConfig, "delimiter", delimiter, nil).
				WithSuggestion("the delimiter must be a single character")
		}
		config.Delimiter = runes[0]
	}
	return config, nil
}

// CreateOptions assembles reconciliation options from resolved flag values.
func CreateOptions(
	leftFormat, rightFormat models.DateFormat,
	policy matcher.Policy,
	statusFilter string,
	allStatuses bool,
	convention models.SignConvention,
	historical []models.RawRecord,
) *reconciler.Options {
	return &reconciler.Options{
		LeftFormat:   leftFormat,
		RightFormat:  rightFormat,
		Policy:       policy,
		StatusFilter: statusFilter,
		AllStatuses:  allStatuses,
		Convention:   convention,
		Historical:   historical,
	}
}

// CreateReportConfig creates the reporter configuration for the chosen
// output format and detail level.
func CreateReportConfig(format string, includeMatches bool, maxItems int) (*reporter.Config, error) {
	outputFormat := reporter.OutputFormat(format)
	if !outputFormat.IsValid() {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig, "output_format", format, nil).
			WithSuggestion("supported formats: console, json, csv")
	}

	config := reporter.DefaultConfig()
	config.Format = outputFormat
	config.IncludePerfectMatches = includeMatches
	if maxItems >= 0 {
		config.MaxListedItems = maxItems
	}
	return config, nil
}
