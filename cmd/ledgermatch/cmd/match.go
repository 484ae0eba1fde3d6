package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ledgermatch/cmd/ledgermatch/config"
	"ledgermatch/internal/models"
	"ledgermatch/internal/parsers"
	"ledgermatch/internal/reconciler"
	"ledgermatch/internal/reporter"
)

// Flags for the match command
var (
	leftFile        string
	rightFile       string
	historicalFile  string
	leftDateFormat  string
	rightDateFormat string
	policyFlag      string
	statusFilter    string
	allStatuses     bool
	signConvention  string
	delimiter       string
	outputFormat    string
	outputFile      string
	includeMatches  bool
	maxItems        int
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Reconcile two ledger CSV files",
	Long: `Match compares a left-side ledger (typically accounts receivable)
against a right-side ledger (typically accounts payable) and reports
perfect matches, mismatches, unmatched residues, and totals with variance.

Examples:
  # Basic reconciliation with exact-key matching
  ledgermatch match --left ar.csv --right ap.csv

  # Different date formats per side
  ledgermatch match --left ar.csv --right ap.csv \
    --left-date-format YYYY-MM-DD --right-date-format DD/MM/YYYY

  # Scored candidate matching with JSON output
  ledgermatch match --left ar.csv --right ap.csv \
    --policy scored --output-format json --output-file report.json

  # Consult historical receivables for unmatched payables
  ledgermatch match --left ar.csv --right ap.csv --historical ar_history.csv`,

	PreRunE: validateMatchFlags,
	RunE:    runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	// Required flags
	matchCmd.Flags().StringVarP(&leftFile, "left", "l", "", "path to the left-side ledger CSV file (required)")
	matchCmd.Flags().StringVarP(&rightFile, "right", "r", "", "path to the right-side ledger CSV file (required)")

	// Input shape flags
	matchCmd.Flags().StringVar(&leftDateFormat, "left-date-format", "YYYY-MM-DD", "date format of the left file")
	matchCmd.Flags().StringVar(&rightDateFormat, "right-date-format", "YYYY-MM-DD", "date format of the right file")
	matchCmd.Flags().StringVar(&delimiter, "delimiter", ",", "CSV field delimiter")
	matchCmd.Flags().StringVar(&historicalFile, "historical", "", "optional historical left-side CSV consulted for unmatched right-side items")

	// Matching flags
	matchCmd.Flags().StringVarP(&policyFlag, "policy", "p", "exact", "matching policy: exact, scored")
	matchCmd.Flags().StringVar(&statusFilter, "status-filter", reconciler.DefaultStatusFilter, "status the totals are filtered to")
	matchCmd.Flags().BoolVar(&allStatuses, "all-statuses", false, "sum totals over every status")
	matchCmd.Flags().StringVar(&signConvention, "sign-convention", "", "amount sign convention: mirrored, opposite (default: per policy)")

	// Output flags
	matchCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	matchCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	matchCmd.Flags().BoolVar(&includeMatches, "include-matches", false, "list perfect matches in the report")
	matchCmd.Flags().IntVar(&maxItems, "max-items", 50, "cap per-section console listings (0 = unlimited)")

	matchCmd.MarkFlagRequired("left")
	matchCmd.MarkFlagRequired("right")

	viper.BindPFlag("left", matchCmd.Flags().Lookup("left"))
	viper.BindPFlag("right", matchCmd.Flags().Lookup("right"))
	viper.BindPFlag("left-date-format", matchCmd.Flags().Lookup("left-date-format"))
	viper.BindPFlag("right-date-format", matchCmd.Flags().Lookup("right-date-format"))
	viper.BindPFlag("delimiter", matchCmd.Flags().Lookup("delimiter"))
	viper.BindPFlag("historical", matchCmd.Flags().Lookup("historical"))
	viper.BindPFlag("policy", matchCmd.Flags().Lookup("policy"))
	viper.BindPFlag("status-filter", matchCmd.Flags().Lookup("status-filter"))
	viper.BindPFlag("all-statuses", matchCmd.Flags().Lookup("all-statuses"))
	viper.BindPFlag("sign-convention", matchCmd.Flags().Lookup("sign-convention"))
	viper.BindPFlag("output-format", matchCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", matchCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("include-matches", matchCmd.Flags().Lookup("include-matches"))
	viper.BindPFlag("max-items", matchCmd.Flags().Lookup("max-items"))
}

func validateMatchFlags(cmd *cobra.Command, args []string) error {
	// Viper values allow overrides from the config file and environment.
	leftFile = viper.GetString("left")
	rightFile = viper.GetString("right")
	leftDateFormat = viper.GetString("left-date-format")
	rightDateFormat = viper.GetString("right-date-format")
	delimiter = viper.GetString("delimiter")
	historicalFile = viper.GetString("historical")
	policyFlag = viper.GetString("policy")
	statusFilter = viper.GetString("status-filter")
	allStatuses = viper.GetBool("all-statuses")
	signConvention = viper.GetString("sign-convention")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	includeMatches = viper.GetBool("include-matches")
	maxItems = viper.GetInt("max-items")

	if err := validateFileExists(leftFile, "left ledger file"); err != nil {
		return err
	}
	if err := validateFileExists(rightFile, "right ledger file"); err != nil {
		return err
	}
	if historicalFile != "" {
		if err := validateFileExists(historicalFile, "historical file"); err != nil {
			return err
		}
	}

	if _, err := config.ResolveDateFormat(leftDateFormat); err != nil {
		return err
	}
	if _, err := config.ResolveDateFormat(rightDateFormat); err != nil {
		return err
	}
	if _, err := config.ResolvePolicy(policyFlag); err != nil {
		return err
	}
	if _, err := config.ResolveConvention(signConvention); err != nil {
		return err
	}
	if _, err := config.CreateReportConfig(outputFormat, includeMatches, maxItems); err != nil {
		return err
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	parserConfig, err := config.CreateParserConfig(delimiter)
	if err != nil {
		return err
	}
	parser := parsers.NewLedgerParser(parserConfig)

	leftRows, err := parser.ParseFile(ctx, leftFile)
	if err != nil {
		return err
	}
	rightRows, err := parser.ParseFile(ctx, rightFile)
	if err != nil {
		return err
	}

	var historicalRows []models.RawRecord
	if historicalFile != "" {
		historicalRows, err = parser.ParseFile(ctx, historicalFile)
		if err != nil {
			return err
		}
	}

	leftFormat, err := config.ResolveDateFormat(leftDateFormat)
	if err != nil {
		return err
	}
	rightFormat, err := config.ResolveDateFormat(rightDateFormat)
	if err != nil {
		return err
	}
	policy, err := config.ResolvePolicy(policyFlag)
	if err != nil {
		return err
	}
	convention, err := config.ResolveConvention(signConvention)
	if err != nil {
		return err
	}

	service, err := reconciler.NewService(nil)
	if err != nil {
		return err
	}

	opts := config.CreateOptions(
		leftFormat, rightFormat, policy,
		statusFilter, allStatuses, convention, historicalRows)

	result, err := service.Reconcile(ctx, leftRows, rightRows, opts)
	if err != nil {
		return err
	}

	reportConfig, err := config.CreateReportConfig(outputFormat, includeMatches, maxItems)
	if err != nil {
		return err
	}
	generator, err := reporter.NewGenerator(reportConfig)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outputFile != "" {
		out, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer out.Close()
	}

	if err := generator.Generate(result, out); err != nil {
		return err
	}

	if outputFile != "" && viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", outputFile)
	}

	return nil
}
