// Package reconciler is the public entry point of the matching engine.
//
// A Service accepts two raw record collections plus per-side date-format
// configuration, drives normalization, matching, and aggregation, and
// returns the combined result. The computation is pure: all configuration
// arrives as explicit parameters, no state survives a call, and concurrent
// calls need no coordination.
//
// Example usage:
//
//	service, err := reconciler.NewService(nil)
//	if err != nil {
//		return err
//	}
//	result, err := service.Reconcile(ctx, leftRows, rightRows, &reconciler.Options{
//		LeftFormat:  models.DateFormatISO,
//		RightFormat: models.DateFormatDMYSlash,
//		Policy:      matcher.PolicyExactKey,
//	})
package reconciler

import (
	"context"
	"time"

	"ledgermatch/internal/aggregate"
	"ledgermatch/internal/matcher"
	"ledgermatch/internal/models"
	"ledgermatch/internal/normalize"
	"ledgermatch/pkg/errors"
	"ledgermatch/pkg/logger"
)

// DefaultStatusFilter is the status the primary totals view is filtered to
// when the caller does not choose otherwise.
const DefaultStatusFilter = "Open"

// Options configures a single reconciliation call.
type Options struct {
	// LeftFormat and RightFormat describe the date layout of each side's
	// raw records. Both are required.
	LeftFormat  models.DateFormat
	RightFormat models.DateFormat

	// Policy selects the matching strategy. Defaults to PolicyExactKey.
	Policy matcher.Policy

	// StatusFilter restricts the totals to records with this exact status.
	// Empty selects DefaultStatusFilter; set AllStatuses to sum everything.
	StatusFilter string
	AllStatuses  bool

	// Convention declares the amount sign convention for variance. When
	// empty it defaults per policy: PolicyExactKey assumes mirrored signs,
	// PolicyScoredCandidate assumes opposite signs.
	Convention models.SignConvention

	// Matching overrides the tolerances and weights of the selected
	// policy. The Policy field above takes precedence over Matching.Policy.
	Matching *matcher.Config

	// Historical optionally supplies past left-side records, normalized
	// with LeftFormat, consulted for insights on unmatched right-side
	// records.
	Historical []models.RawRecord
}

// Validate checks the options for configuration errors. Unsupported
// formats and policies are fatal for the whole call.
func (o *Options) Validate() error {
	if !o.LeftFormat.IsValid() {
		return errors.ConfigurationError(
			errors.CodeUnsupportedDateFormat, "left_format", o.LeftFormat.String(), nil)
	}
	if !o.RightFormat.IsValid() {
		return errors.ConfigurationError(
			errors.CodeUnsupportedDateFormat, "right_format", o.RightFormat.String(), nil)
	}
	if o.Policy != "" && !o.Policy.IsValid() {
		return errors.ConfigurationError(
			errors.CodeUnsupportedPolicy, "policy", o.Policy.String(), nil)
	}
	if o.Convention != "" && !o.Convention.IsValid() {
		return errors.ConfigurationError(
			errors.CodeInvalidConfig, "sign_convention", string(o.Convention), nil)
	}
	return nil
}

// policy returns the effective matching policy.
func (o *Options) policy() matcher.Policy {
	if o.Policy != "" {
		return o.Policy
	}
	if o.Matching != nil && o.Matching.Policy != "" {
		return o.Matching.Policy
	}
	return matcher.PolicyExactKey
}

// convention returns the effective sign convention, defaulting per policy.
func (o *Options) convention() models.SignConvention {
	if o.Convention != "" {
		return o.Convention
	}
	if o.policy() == matcher.PolicyScoredCandidate {
		return models.ConventionOpposite
	}
	return models.ConventionMirrored
}

// statusFilter returns the effective totals filter.
func (o *Options) statusFilter() string {
	if o.AllStatuses {
		return ""
	}
	if o.StatusFilter != "" {
		return o.StatusFilter
	}
	return DefaultStatusFilter
}

// UnmatchedItems holds the per-side unmatched residues.
type UnmatchedItems struct {
	Left  []*models.Transaction `json:"left"`
	Right []*models.Transaction `json:"right"`
}

// RowIssues reports the rows each side rejected during normalization, so
// no dropped row goes unreported.
type RowIssues struct {
	Left  *errors.RowErrors `json:"left,omitempty"`
	Right *errors.RowErrors `json:"right,omitempty"`
}

// HasIssues reports whether either side rejected rows.
func (r *RowIssues) HasIssues() bool {
	return r != nil && (r.Left.HasErrors() || r.Right.HasErrors())
}

// Summary provides a high-level overview of a reconciliation run.
type Summary struct {
	LeftRecords    int `json:"left_records"`
	RightRecords   int `json:"right_records"`
	PerfectMatches int `json:"perfect_matches"`
	Mismatches     int `json:"mismatches"`
	UnmatchedLeft  int `json:"unmatched_left"`
	UnmatchedRight int `json:"unmatched_right"`
	RejectedRows   int `json:"rejected_rows"`

	Policy     matcher.Policy `json:"policy"`
	Duration   time.Duration  `json:"duration"`
	Reconciled bool           `json:"reconciled"`
}

// ReconciliationResult is the complete output of one reconciliation call.
type ReconciliationResult struct {
	Totals         models.Totals        `json:"totals"`
	PerfectMatches []*models.MatchPair  `json:"perfect_matches"`
	Mismatches     []*models.MatchPair  `json:"mismatches"`
	Unmatched      UnmatchedItems       `json:"unmatched"`
	RowIssues      *RowIssues           `json:"row_issues,omitempty"`
	Insights       []*HistoricalInsight `json:"historical_insights,omitempty"`
	Summary        *Summary             `json:"summary"`
	ProcessedAt    time.Time            `json:"processed_at"`
}

// Service drives normalization, matching, and aggregation.
type Service struct {
	defaults *matcher.Config
	logger   logger.Logger
}

// NewService creates a reconciliation service. The optional matching
// config supplies defaults that per-call Options may override.
func NewService(defaults *matcher.Config) (*Service, error) {
	if defaults == nil {
		defaults = matcher.DefaultConfig()
	}
	if err := defaults.Validate(); err != nil {
		return nil, err
	}

	return &Service{
		defaults: defaults.Clone(),
		logger:   logger.GetGlobalLogger().WithComponent("reconciler"),
	}, nil
}

// Reconcile normalizes both sides, matches them under the selected policy,
// and aggregates totals under the effective sign convention. It returns
// either a complete result or a single structured error; rejected rows are
// reported in the result rather than silently dropped.
func (s *Service) Reconcile(ctx context.Context, left, right []models.RawRecord, opts *Options) (*ReconciliationResult, error) {
	if opts == nil {
		opts = &Options{LeftFormat: models.DateFormatISO, RightFormat: models.DateFormatISO}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	policy := opts.policy()

	s.logger.WithFields(logger.Fields{
		"left_rows":    len(left),
		"right_rows":   len(right),
		"policy":       policy.String(),
		"left_format":  opts.LeftFormat.String(),
		"right_format": opts.RightFormat.String(),
	}).Info("Starting reconciliation")

	leftTxs, leftIssues, err := s.normalizeSide(left, opts.LeftFormat, "left")
	if err != nil {
		return nil, err
	}
	rightTxs, rightIssues, err := s.normalizeSide(right, opts.RightFormat, "right")
	if err != nil {
		return nil, err
	}

	config := opts.Matching
	if config == nil {
		config = s.defaults
	}
	config = config.Clone()
	config.Policy = policy
	m, err := matcher.New(config)
	if err != nil {
		return nil, err
	}

	set, err := m.Match(ctx, leftTxs, rightTxs)
	if err != nil {
		return nil, err
	}

	totals, err := aggregate.ComputeTotals(leftTxs, rightTxs, opts.statusFilter(), opts.convention())
	if err != nil {
		return nil, err
	}

	insights, err := s.historicalInsights(opts, set.UnmatchedRight)
	if err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		Totals:         totals,
		PerfectMatches: set.PerfectMatches,
		Mismatches:     set.Mismatches,
		Unmatched: UnmatchedItems{
			Left:  set.UnmatchedLeft,
			Right: set.UnmatchedRight,
		},
		Insights:    insights,
		ProcessedAt: time.Now().UTC(),
	}

	rejected := 0
	if leftIssues.HasErrors() || rightIssues.HasErrors() {
		result.RowIssues = &RowIssues{}
		if leftIssues.HasErrors() {
			result.RowIssues.Left = leftIssues
			rejected += leftIssues.Total
		}
		if rightIssues.HasErrors() {
			result.RowIssues.Right = rightIssues
			rejected += rightIssues.Total
		}
	}

	result.Summary = &Summary{
		LeftRecords:    len(leftTxs),
		RightRecords:   len(rightTxs),
		PerfectMatches: len(set.PerfectMatches),
		Mismatches:     len(set.Mismatches),
		UnmatchedLeft:  len(set.UnmatchedLeft),
		UnmatchedRight: len(set.UnmatchedRight),
		RejectedRows:   rejected,
		Policy:         policy,
		Duration:       time.Since(start),
		Reconciled:     totals.Variance.IsZero() && set.MatchedCount() == len(set.PerfectMatches) && len(set.UnmatchedLeft) == 0 && len(set.UnmatchedRight) == 0,
	}

	s.logger.WithFields(logger.Fields{
		"perfect":         result.Summary.PerfectMatches,
		"mismatches":      result.Summary.Mismatches,
		"unmatched_left":  result.Summary.UnmatchedLeft,
		"unmatched_right": result.Summary.UnmatchedRight,
		"rejected_rows":   result.Summary.RejectedRows,
		"variance":        totals.Variance.StringFixed(2),
		"duration":        result.Summary.Duration.String(),
	}).Info("Reconciliation complete")

	return result, nil
}

// normalizeSide converts one side's raw rows into canonical transactions.
func (s *Service) normalizeSide(rows []models.RawRecord, format models.DateFormat, side string) ([]*models.Transaction, *errors.RowErrors, error) {
	normalizer, err := normalize.NewNormalizer(format)
	if err != nil {
		return nil, nil, err
	}

	txs, issues, err := normalizer.NormalizeRecords(rows)
	if err != nil {
		if recErr, ok := errors.AsReconcilerError(err); ok {
			return nil, nil, recErr.WithContext("side", side)
		}
		return nil, nil, err
	}
	return txs, issues, nil
}
