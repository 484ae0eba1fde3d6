package reconciler

import (
	"fmt"
	"sort"
	"strings"

	"ledgermatch/internal/models"
	"ledgermatch/internal/normalize"
	"ledgermatch/pkg/errors"
)

// InsightType classifies what a historical record reveals about an
// unmatched right-side item.
type InsightType string

const (
	// InsightAlreadyPaid means the invoice was settled in a past period.
	InsightAlreadyPaid InsightType = "already_paid"

	// InsightVoided means the invoice was cancelled on the left side.
	InsightVoided InsightType = "voided"

	// InsightDraft means the invoice only exists as a draft.
	InsightDraft InsightType = "draft"

	// InsightFoundInHistory means the invoice appears in history with some
	// other status.
	InsightFoundInHistory InsightType = "found_in_history"
)

// InsightSeverity grades how much attention an insight deserves.
type InsightSeverity string

const (
	SeverityInfo    InsightSeverity = "info"
	SeverityWarning InsightSeverity = "warning"
	SeverityError   InsightSeverity = "error"
)

// HistoricalInsight explains an unmatched right-side record through a
// matching record in the historical left-side data.
type HistoricalInsight struct {
	Item     *models.Transaction `json:"item"`
	Match    *models.Transaction `json:"historical_match"`
	Type     InsightType         `json:"type"`
	Message  string              `json:"message"`
	Severity InsightSeverity     `json:"severity"`
}

// historicalInsights annotates unmatched right-side records that appear in
// the optional historical data. Historical rows are normalized with the
// left side's date format; rows the historical set rejects are ignored
// rather than failing the call, since history is advisory.
func (s *Service) historicalInsights(opts *Options, unmatchedRight []*models.Transaction) ([]*HistoricalInsight, error) {
	if len(opts.Historical) == 0 || len(unmatchedRight) == 0 {
		return nil, nil
	}

	normalizer, err := normalize.NewNormalizer(opts.LeftFormat)
	if err != nil {
		return nil, err
	}
	historical, issues, err := normalizer.NormalizeRecords(opts.Historical)
	if err != nil {
		if recErr, ok := errors.AsReconcilerError(err); ok {
			return nil, recErr.WithContext("side", "historical")
		}
		return nil, err
	}
	if issues.HasErrors() {
		s.logger.WithField("rejected_rows", issues.Total).Warn("Some historical rows were rejected")
	}

	var insights []*HistoricalInsight
	for _, item := range unmatchedRight {
		matches := findHistoricalMatches(item, historical)
		if len(matches) == 0 {
			continue
		}

		best := bestHistoricalMatch(matches)
		insights = append(insights, newInsight(item, best))
	}

	return insights, nil
}

// findHistoricalMatches returns historical records sharing the item's
// transaction number or non-empty reference, in historical input order.
func findHistoricalMatches(item *models.Transaction, historical []*models.Transaction) []*models.Transaction {
	var matches []*models.Transaction
	for _, h := range historical {
		if item.TransactionNumber != "" && item.TransactionNumber == h.TransactionNumber {
			matches = append(matches, h)
			continue
		}
		if item.Reference != "" && item.Reference == h.Reference {
			matches = append(matches, h)
		}
	}
	return matches
}

// bestHistoricalMatch prefers settled records, then the most recent issue
// date. The sort is stable, so input order breaks remaining ties.
func bestHistoricalMatch(matches []*models.Transaction) *models.Transaction {
	sorted := make([]*models.Transaction, len(matches))
	copy(sorted, matches)

	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := isPaid(sorted[i]), isPaid(sorted[j])
		if pi != pj {
			return pi
		}
		return sorted[i].IssueDate.After(sorted[j].IssueDate)
	})
	return sorted[0]
}

func isPaid(tx *models.Transaction) bool {
	return strings.EqualFold(tx.Status, "Paid")
}

func isVoided(tx *models.Transaction) bool {
	return strings.EqualFold(tx.Status, "Voided")
}

func isDraft(tx *models.Transaction) bool {
	return strings.EqualFold(tx.Status, "Draft")
}

// newInsight interprets the best historical match for an unmatched item.
func newInsight(item, match *models.Transaction) *HistoricalInsight {
	insight := &HistoricalInsight{Item: item, Match: match}

	switch {
	case isPaid(match):
		insight.Type = InsightAlreadyPaid
		insight.Severity = SeverityWarning
		insight.Message = fmt.Sprintf("invoice %s appears to have been paid on %s",
			item.TransactionNumber, match.IssueDateString())
	case isVoided(match):
		insight.Type = InsightVoided
		insight.Severity = SeverityError
		insight.Message = fmt.Sprintf("invoice %s was voided on the receivable side",
			item.TransactionNumber)
	case isDraft(match):
		insight.Type = InsightDraft
		insight.Severity = SeverityInfo
		insight.Message = fmt.Sprintf("invoice %s exists as a draft on the receivable side",
			item.TransactionNumber)
	default:
		insight.Type = InsightFoundInHistory
		insight.Severity = SeverityInfo
		insight.Message = fmt.Sprintf("invoice %s found in history with status %q",
			item.TransactionNumber, match.Status)
	}

	return insight
}
