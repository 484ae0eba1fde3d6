package matcher

import (
	"context"

	"ledgermatch/internal/models"
	"ledgermatch/pkg/errors"
	"ledgermatch/pkg/logger"
)

// MatchSet is the outcome of running one matching policy over two sides.
// Every input record appears in exactly one place: as the left or right
// participant of a pair in PerfectMatches or Mismatches, or in the
// unmatched residue for its side.
type MatchSet struct {
	PerfectMatches []*models.MatchPair   `json:"perfect_matches"`
	Mismatches     []*models.MatchPair   `json:"mismatches"`
	UnmatchedLeft  []*models.Transaction `json:"unmatched_left"`
	UnmatchedRight []*models.Transaction `json:"unmatched_right"`
}

// MatchedCount returns the number of pairings, perfect or not.
func (s *MatchSet) MatchedCount() int {
	return len(s.PerfectMatches) + len(s.Mismatches)
}

// Matcher pairs two canonical transaction collections under one policy.
type Matcher interface {
	// Match pairs the left side against the right side. Inputs are not
	// mutated; the result references the input transactions directly.
	Match(ctx context.Context, left, right []*models.Transaction) (*MatchSet, error)

	// Policy identifies the strategy this matcher implements.
	Policy() Policy
}

// New creates a Matcher for the configured policy. A nil config selects
// the defaults.
func New(config *Config) (Matcher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	log := logger.GetGlobalLogger().WithComponent("matcher").
		WithField("policy", config.Policy.String())

	switch config.Policy {
	case PolicyExactKey:
		return &exactKeyMatcher{config: config.Clone(), logger: log}, nil
	case PolicyScoredCandidate:
		return &scoredMatcher{config: config.Clone(), logger: log}, nil
	default:
		return nil, errors.ConfigurationError(
			errors.CodeUnsupportedPolicy, "policy", config.Policy.String(), nil)
	}
}

// checkContext surfaces caller cancellation between left-side records.
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errors.DataProcessingError("matching", ctx.Err())
	default:
		return nil
	}
}
