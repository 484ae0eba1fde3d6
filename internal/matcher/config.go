// Package matcher pairs canonical transactions from two ledger sides and
// classifies every pairing as a perfect match or a mismatch.
//
// Two matching policies are supported behind a single Matcher abstraction:
//
//   - PolicyExactKey: the right side is indexed by transaction number and
//     each left record is compared field-by-field against its keyed
//     counterpart (amount at two decimal places, issue date, status, type).
//     Suited to ledgers that share an identifier space and a sign convention.
//
//   - PolicyScoredCandidate: candidates are retrieved by transaction number
//     or shared reference, a single candidate is classified directly, and
//     ambiguous candidate sets are resolved by a weighted score with
//     first-seen tie-breaking. Suited to AR/AP pairs where one side carries
//     negated amounts and identifiers only partially overlap.
//
// Both policies guarantee the partition property: every input record lands
// in exactly one of perfect matches, mismatches, or the unmatched residue
// for its side.
//
// Example usage:
//
//	config := matcher.DefaultConfig()
//	config.Policy = matcher.PolicyScoredCandidate
//
//	m, err := matcher.New(config)
//	if err != nil {
//		return err
//	}
//	set, err := m.Match(ctx, leftTransactions, rightTransactions)
package matcher

import (
	"github.com/shopspring/decimal"

	"ledgermatch/pkg/errors"
)

// Policy selects the matching strategy.
type Policy string

const (
	// PolicyExactKey matches by transaction number and requires exact
	// equality on amount, issue date, status, and type for a perfect match.
	PolicyExactKey Policy = "exact"

	// PolicyScoredCandidate retrieves candidates by transaction number or
	// reference and resolves ambiguity with a weighted score.
	PolicyScoredCandidate Policy = "scored"
)

// String returns the policy tag.
func (p Policy) String() string {
	return string(p)
}

// IsValid checks if the policy is supported.
func (p Policy) IsValid() bool {
	return p == PolicyExactKey || p == PolicyScoredCandidate
}

// SupportedPolicies returns all selectable policies.
func SupportedPolicies() []Policy {
	return []Policy{PolicyExactKey, PolicyScoredCandidate}
}

// ScoreWeights defines the contribution of each criterion to a candidate's
// score under PolicyScoredCandidate. Higher totals win; ties go to the
// earliest candidate in right-side input order.
type ScoreWeights struct {
	// OppositeAmount is awarded when the absolute amounts agree within
	// the configured tolerance.
	OppositeAmount float64 `json:"opposite_amount"`

	// TransactionNumber is awarded when both transaction numbers are
	// non-empty and equal.
	TransactionNumber float64 `json:"transaction_number"`

	// Reference is awarded when both references are non-empty and equal.
	Reference float64 `json:"reference"`

	// SameDate is awarded when both issue dates are known and identical.
	SameDate float64 `json:"same_date"`

	// NearDate is awarded when both issue dates are known and within
	// DateProximityDays of each other (but not identical).
	NearDate float64 `json:"near_date"`
}

// Config holds the tunable parameters of both matching policies.
type Config struct {
	// Policy selects the matching strategy.
	Policy Policy `json:"policy"`

	// AmountPrecision is the number of decimal places amounts are rounded
	// to before exact comparison under PolicyExactKey.
	AmountPrecision int32 `json:"amount_precision"`

	// AmountTolerance is the maximum absolute-value difference for two
	// amounts to count as opposites under PolicyScoredCandidate.
	AmountTolerance decimal.Decimal `json:"amount_tolerance"`

	// DateProximityDays is the window for the near-date score component.
	DateProximityDays int `json:"date_proximity_days"`

	// Weights are the scoring weights for PolicyScoredCandidate.
	Weights ScoreWeights `json:"weights"`
}

// DefaultConfig returns a configuration with the standard tolerances and
// scoring weights.
func DefaultConfig() *Config {
	return &Config{
		Policy:            PolicyExactKey,
		AmountPrecision:   2,
		AmountTolerance:   decimal.NewFromFloat(0.01),
		DateProximityDays: 5,
		Weights: ScoreWeights{
			OppositeAmount:    3,
			TransactionNumber: 2,
			Reference:         2,
			SameDate:          1,
			NearDate:          0.5,
		},
	}
}

// Validate checks the configuration for values that would make matching
// results meaningless.
func (c *Config) Validate() error {
	if !c.Policy.IsValid() {
		return errors.ConfigurationError(
			errors.CodeUnsupportedPolicy, "policy", c.Policy.String(), nil)
	}
	if c.AmountPrecision < 0 {
		return errors.ConfigurationError(
			errors.CodeInvalidConfig, "amount_precision", c.AmountPrecision, nil)
	}
	if c.AmountTolerance.IsNegative() {
		return errors.ConfigurationError(
			errors.CodeInvalidConfig, "amount_tolerance", c.AmountTolerance.String(), nil)
	}
	if c.DateProximityDays < 0 {
		return errors.ConfigurationError(
			errors.CodeInvalidConfig, "date_proximity_days", c.DateProximityDays, nil)
	}
	return nil
}

// Clone returns a copy of the configuration for safe modification.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
