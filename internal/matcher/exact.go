package matcher

import (
	"context"

	"ledgermatch/internal/models"
	"ledgermatch/pkg/logger"
)

// exactKeyMatcher implements PolicyExactKey: a keyed lookup on transaction
// number followed by exact four-field comparison. Each right-side record
// pairs at most once; duplicate transaction numbers are consumed in input
// order.
type exactKeyMatcher struct {
	config *Config
	logger logger.Logger
}

func (m *exactKeyMatcher) Policy() Policy {
	return PolicyExactKey
}

func (m *exactKeyMatcher) Match(ctx context.Context, left, right []*models.Transaction) (*MatchSet, error) {
	set := &MatchSet{
		PerfectMatches: []*models.MatchPair{},
		Mismatches:     []*models.MatchPair{},
		UnmatchedLeft:  []*models.Transaction{},
		UnmatchedRight: []*models.Transaction{},
	}

	idx := newRightIndex(right)

	for _, l := range left {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}

		r := idx.takeByNumber(l.TransactionNumber)
		if r == nil {
			set.UnmatchedLeft = append(set.UnmatchedLeft, l)
			continue
		}

		diffs := m.compare(l, r)
		if diffs.Any() {
			set.Mismatches = append(set.Mismatches, &models.MatchPair{
				Left:        l,
				Right:       r,
				Differences: &diffs,
			})
		} else {
			set.PerfectMatches = append(set.PerfectMatches, &models.MatchPair{
				Left:  l,
				Right: r,
			})
		}
	}

	set.UnmatchedRight = idx.remaining()

	m.logger.WithFields(logger.Fields{
		"perfect":         len(set.PerfectMatches),
		"mismatches":      len(set.Mismatches),
		"unmatched_left":  len(set.UnmatchedLeft),
		"unmatched_right": len(set.UnmatchedRight),
	}).Debug("Exact-key matching complete")

	return set, nil
}

// compare evaluates the four compared fields. Amounts are rounded to the
// configured precision before comparison; issue dates compare as calendar
// days.
func (m *exactKeyMatcher) compare(l, r *models.Transaction) models.Differences {
	return models.Differences{
		Amount:    !l.Amount.Round(m.config.AmountPrecision).Equal(r.Amount.Round(m.config.AmountPrecision)),
		IssueDate: !l.IssueDate.Equal(r.IssueDate),
		Status:    l.Status != r.Status,
		Type:      l.Type != r.Type,
	}
}
