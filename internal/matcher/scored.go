package matcher

import (
	"context"

	"ledgermatch/internal/models"
	"ledgermatch/pkg/logger"
)

// scoredMatcher implements PolicyScoredCandidate. Candidates are retrieved
// by transaction number or shared non-empty reference; a lone candidate is
// classified directly, while ambiguous candidate sets are resolved by a
// weighted score. A pairing chosen among multiple candidates is always a
// mismatch: ambiguity itself is a reconciliation finding.
type scoredMatcher struct {
	config *Config
	logger logger.Logger
}

func (m *scoredMatcher) Policy() Policy {
	return PolicyScoredCandidate
}

func (m *scoredMatcher) Match(ctx context.Context, left, right []*models.Transaction) (*MatchSet, error) {
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

		candidates := idx.candidates(l)
		switch len(candidates) {
		case 0:
			set.UnmatchedLeft = append(set.UnmatchedLeft, l)

		case 1:
			r := candidates[0]
			idx.consume(r)
			if m.identifiersMatch(l, r) && m.amountsOpposite(l, r) {
				set.PerfectMatches = append(set.PerfectMatches, &models.MatchPair{
					Left:  l,
					Right: r,
				})
			} else {
				diffs := m.compare(l, r)
				set.Mismatches = append(set.Mismatches, &models.MatchPair{
					Left:        l,
					Right:       r,
					Differences: &diffs,
				})
			}

		default:
			r := m.bestCandidate(l, candidates)
			idx.consume(r)
			diffs := m.compare(l, r)
			set.Mismatches = append(set.Mismatches, &models.MatchPair{
				Left:        l,
				Right:       r,
				Differences: &diffs,
			})
		}
	}

	set.UnmatchedRight = idx.remaining()

	m.logger.WithFields(logger.Fields{
		"perfect":         len(set.PerfectMatches),
		"mismatches":      len(set.Mismatches),
		"unmatched_left":  len(set.UnmatchedLeft),
		"unmatched_right": len(set.UnmatchedRight),
	}).Debug("Scored matching complete")

	return set, nil
}

// bestCandidate returns the highest-scoring candidate. Candidates arrive in
// right-side input order and a strict improvement is required to displace
// the current best, so ties go to the earliest candidate.
func (m *scoredMatcher) bestCandidate(l *models.Transaction, candidates []*models.Transaction) *models.Transaction {
	best := candidates[0]
	bestScore := m.score(l, best)

	for _, c := range candidates[1:] {
		if s := m.score(l, c); s > bestScore {
			best = c
			bestScore = s
		}
	}
	return best
}

// score rates one candidate against a left record using the configured
// weights.
func (m *scoredMatcher) score(l, r *models.Transaction) float64 {
	var score float64

	if m.amountsOpposite(l, r) {
		score += m.config.Weights.OppositeAmount
	}
	if l.TransactionNumber != "" && l.TransactionNumber == r.TransactionNumber {
		score += m.config.Weights.TransactionNumber
	}
	if l.Reference != "" && l.Reference == r.Reference {
		score += m.config.Weights.Reference
	}

	if l.HasIssueDate() && r.HasIssueDate() {
		days := daysBetween(l, r)
		if days == 0 {
			score += m.config.Weights.SameDate
		} else if days <= m.config.DateProximityDays {
			score += m.config.Weights.NearDate
		}
	}

	return score
}

// identifiersMatch reports whether the records share a transaction number
// or a non-empty reference.
func (m *scoredMatcher) identifiersMatch(l, r *models.Transaction) bool {
	if l.TransactionNumber != "" && l.TransactionNumber == r.TransactionNumber {
		return true
	}
	return l.Reference != "" && l.Reference == r.Reference
}

// amountsOpposite reports whether the absolute amounts agree within the
// configured tolerance. One side is expected to carry negated amounts, so
// only magnitudes are compared.
func (m *scoredMatcher) amountsOpposite(l, r *models.Transaction) bool {
	diff := l.Amount.Abs().Sub(r.Amount.Abs()).Abs()
	return diff.LessThan(m.config.AmountTolerance)
}

// compare fills the differences record for a scored mismatch. Amounts
// disagree when their magnitudes are outside tolerance.
func (m *scoredMatcher) compare(l, r *models.Transaction) models.Differences {
	return models.Differences{
		Amount:    !m.amountsOpposite(l, r),
		IssueDate: !l.IssueDate.Equal(r.IssueDate),
		Status:    l.Status != r.Status,
		Type:      l.Type != r.Type,
	}
}

// daysBetween returns the whole-day distance between two issue dates.
func daysBetween(l, r *models.Transaction) int {
	d := l.IssueDate.Sub(r.IssueDate)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}
