// Package reporter renders reconciliation results for people and programs.
//
// Supported output formats:
//   - Console: human-readable summary for terminal display
//   - JSON: the full result, structured for programmatic consumption
//   - CSV: one row per pairing or residue, for spreadsheet review
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"ledgermatch/internal/models"
	"ledgermatch/internal/reconciler"
	"ledgermatch/pkg/errors"
)

// OutputFormat selects how a result is rendered.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// Config holds report generation options.
type Config struct {
	Format OutputFormat `json:"format"`

	// Detail level options
	IncludePerfectMatches bool `json:"include_perfect_matches"`
	IncludeMismatches     bool `json:"include_mismatches"`
	IncludeUnmatched      bool `json:"include_unmatched"`
	IncludeInsights       bool `json:"include_insights"`
	IncludeRowIssues      bool `json:"include_row_issues"`

	// MaxListedItems caps per-section console listings; 0 lists everything.
	MaxListedItems int `json:"max_listed_items"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultConfig returns a configuration suitable for terminal review.
func DefaultConfig() *Config {
	return &Config{
		Format:                FormatConsole,
		IncludePerfectMatches: false,
		IncludeMismatches:     true,
		IncludeUnmatched:      true,
		IncludeInsights:       true,
		IncludeRowIssues:      true,
		MaxListedItems:        50,
		CSVDelimiter:          ',',
		CSVHeaders:            true,
	}
}

// Validate validates the report configuration.
func (c *Config) Validate() error {
	if !c.Format.IsValid() {
		return errors.ConfigurationError(
			errors.CodeInvalidConfig, "output_format", string(c.Format), nil)
	}
	if c.MaxListedItems < 0 {
		return errors.ConfigurationError(
			errors.CodeInvalidConfig, "max_listed_items", c.MaxListedItems, nil)
	}
	return nil
}

// Generator renders reconciliation results in the configured format.
type Generator struct {
	config *Config
}

// NewGenerator creates a report generator. A nil config selects the
// defaults.
func NewGenerator(config *Config) (*Generator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Generator{config: config}, nil
}

// Generate writes the report for result to w.
func (g *Generator) Generate(result *reconciler.ReconciliationResult, w io.Writer) error {
	if result == nil {
		return errors.ValidationError(errors.CodeMissingField, "result", nil, nil)
	}

	switch g.config.Format {
	case FormatConsole:
		return g.writeConsole(result, w)
	case FormatJSON:
		return g.writeJSON(result, w)
	case FormatCSV:
		return g.writeCSV(result, w)
	default:
		return errors.ConfigurationError(
			errors.CodeInvalidConfig, "output_format", string(g.config.Format), nil)
	}
}

func (g *Generator) writeConsole(result *reconciler.ReconciliationResult, w io.Writer) error {
	s := result.Summary

	fmt.Fprintf(w, "LEDGER RECONCILIATION REPORT\n")
	fmt.Fprintf(w, "Generated: %s\n", result.ProcessedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Policy:    %s\n\n", s.Policy)

	fmt.Fprintf(w, "=== SUMMARY ===\n")
	fmt.Fprintf(w, "Left records:    %d\n", s.LeftRecords)
	fmt.Fprintf(w, "Right records:   %d\n", s.RightRecords)
	fmt.Fprintf(w, "Perfect matches: %d\n", s.PerfectMatches)
	fmt.Fprintf(w, "Mismatches:      %d\n", s.Mismatches)
	fmt.Fprintf(w, "Unmatched:       %d left, %d right\n", s.UnmatchedLeft, s.UnmatchedRight)
	if s.RejectedRows > 0 {
		fmt.Fprintf(w, "Rejected rows:   %d\n", s.RejectedRows)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "=== TOTALS ===\n")
	t := result.Totals
	if t.StatusFilter != "" {
		fmt.Fprintf(w, "Status filter: %s\n", t.StatusFilter)
	}
	fmt.Fprintf(w, "Left total:    %s\n", t.LeftTotal.StringFixed(2))
	fmt.Fprintf(w, "Right total:   %s\n", t.RightTotal.StringFixed(2))
	fmt.Fprintf(w, "Variance:      %s (%s sign convention)\n\n", t.Variance.StringFixed(2), t.Convention)

	if g.config.IncludePerfectMatches && len(result.PerfectMatches) > 0 {
		fmt.Fprintf(w, "=== PERFECT MATCHES ===\n")
		g.printPairs(result.PerfectMatches, w)
		fmt.Fprintf(w, "\n")
	}

	if g.config.IncludeMismatches && len(result.Mismatches) > 0 {
		fmt.Fprintf(w, "=== MISMATCHES ===\n")
		g.printPairs(result.Mismatches, w)
		fmt.Fprintf(w, "\n")
	}

	if g.config.IncludeUnmatched {
		if len(result.Unmatched.Left) > 0 {
			fmt.Fprintf(w, "=== UNMATCHED (LEFT) ===\n")
			g.printTransactions(result.Unmatched.Left, w)
			fmt.Fprintf(w, "\n")
		}
		if len(result.Unmatched.Right) > 0 {
			fmt.Fprintf(w, "=== UNMATCHED (RIGHT) ===\n")
			g.printTransactions(result.Unmatched.Right, w)
			fmt.Fprintf(w, "\n")
		}
	}

	if g.config.IncludeInsights && len(result.Insights) > 0 {
		fmt.Fprintf(w, "=== HISTORICAL INSIGHTS ===\n")
		for _, insight := range result.Insights {
			fmt.Fprintf(w, "[%s] %s\n", insight.Severity, insight.Message)
		}
		fmt.Fprintf(w, "\n")
	}

	if g.config.IncludeRowIssues && result.RowIssues.HasIssues() {
		fmt.Fprintf(w, "=== REJECTED ROWS ===\n")
		g.printRowIssues("left", result.RowIssues.Left, w)
		g.printRowIssues("right", result.RowIssues.Right, w)
	}

	return nil
}

func (g *Generator) printPairs(pairs []*models.MatchPair, w io.Writer) {
	for i, pair := range pairs {
		if g.config.MaxListedItems > 0 && i >= g.config.MaxListedItems {
			fmt.Fprintf(w, "... and %d more\n", len(pairs)-i)
			return
		}
		fmt.Fprintf(w, "%-20s %12s vs %12s", pair.Left.TransactionNumber,
			pair.Left.Amount.StringFixed(2), pair.Right.Amount.StringFixed(2))
		if pair.Differences != nil {
			fmt.Fprintf(w, "  differs on: %s", describeDifferences(pair.Differences))
		}
		fmt.Fprintf(w, "\n")
	}
}

func (g *Generator) printTransactions(txs []*models.Transaction, w io.Writer) {
	for i, tx := range txs {
		if g.config.MaxListedItems > 0 && i >= g.config.MaxListedItems {
			fmt.Fprintf(w, "... and %d more\n", len(txs)-i)
			return
		}
		fmt.Fprintf(w, "%-20s %-12s %12s  %s  %s\n", tx.TransactionNumber, tx.Type,
			tx.Amount.StringFixed(2), tx.IssueDateString(), tx.Status)
	}
}

func (g *Generator) printRowIssues(side string, issues *errors.RowErrors, w io.Writer) {
	if !issues.HasErrors() {
		return
	}
	fmt.Fprintf(w, "%s side: %d row(s) rejected\n", side, issues.Total)
	for _, sample := range issues.Sample(g.config.MaxListedItems) {
		fmt.Fprintf(w, "  %s\n", sample)
	}
}

func describeDifferences(d *models.Differences) string {
	var fields []string
	if d.Amount {
		fields = append(fields, "amount")
	}
	if d.IssueDate {
		fields = append(fields, "issue_date")
	}
	if d.Status {
		fields = append(fields, "status")
	}
	if d.Type {
		fields = append(fields, "type")
	}
	if len(fields) == 0 {
		return "nothing (ambiguous candidates)"
	}
	out := fields[0]
	for _, f := range fields[1:] {
		out += ", " + f
	}
	return out
}

func (g *Generator) writeJSON(result *reconciler.ReconciliationResult, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return errors.DataProcessingError("json report", err)
	}
	return nil
}

func (g *Generator) writeCSV(result *reconciler.ReconciliationResult, w io.Writer) error {
	writer := csv.NewWriter(w)
	writer.Comma = g.config.CSVDelimiter
	defer writer.Flush()

	if g.config.CSVHeaders {
		headers := []string{
			"Category", "Left_Transaction", "Right_Transaction",
			"Left_Amount", "Right_Amount", "Left_Date", "Right_Date",
			"Left_Status", "Right_Status", "Differences",
		}
		if err := writer.Write(headers); err != nil {
			return errors.DataProcessingError("csv report", err)
		}
	}

	writePair := func(category string, pair *models.MatchPair) error {
		diffs := ""
		if pair.Differences != nil {
			diffs = describeDifferences(pair.Differences)
		}
		return writer.Write([]string{
			category,
			pair.Left.TransactionNumber, pair.Right.TransactionNumber,
			pair.Left.Amount.StringFixed(2), pair.Right.Amount.StringFixed(2),
			pair.Left.IssueDateString(), pair.Right.IssueDateString(),
			pair.Left.Status, pair.Right.Status,
			diffs,
		})
	}
	writeResidue := func(category string, tx *models.Transaction, left bool) error {
		row := []string{category, "", "", "", "", "", "", "", "", ""}
		if left {
			row[1], row[3], row[5], row[7] = tx.TransactionNumber, tx.Amount.StringFixed(2), tx.IssueDateString(), tx.Status
		} else {
			row[2], row[4], row[6], row[8] = tx.TransactionNumber, tx.Amount.StringFixed(2), tx.IssueDateString(), tx.Status
		}
		return writer.Write(row)
	}

	if g.config.IncludePerfectMatches {
		for _, pair := range result.PerfectMatches {
			if err := writePair("perfect_match", pair); err != nil {
				return errors.DataProcessingError("csv report", err)
			}
		}
	}
	if g.config.IncludeMismatches {
		for _, pair := range result.Mismatches {
			if err := writePair("mismatch", pair); err != nil {
				return errors.DataProcessingError("csv report", err)
			}
		}
	}
	if g.config.IncludeUnmatched {
		for _, tx := range result.Unmatched.Left {
			if err := writeResidue("unmatched_left", tx, true); err != nil {
				return errors.DataProcessingError("csv report", err)
			}
		}
		for _, tx := range result.Unmatched.Right {
			if err := writeResidue("unmatched_right", tx, false); err != nil {
				return errors.DataProcessingError("csv report", err)
			}
		}
	}

	return nil
}
