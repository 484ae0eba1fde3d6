// Package aggregate computes per-side ledger totals and their variance.
package aggregate

import (
	"github.com/shopspring/decimal"

	"ledgermatch/internal/models"
	"ledgermatch/pkg/errors"
)

// ComputeTotals sums amounts on each side and derives the variance under
// the given sign convention. When statusFilter is non-empty, only records
// whose status equals it (case-sensitive) contribute to the sums.
//
// Under ConventionMirrored both sides record positive amounts and the
// variance is leftTotal - rightTotal. Under ConventionOpposite one side
// already carries negated amounts and the variance is leftTotal +
// rightTotal; either way a zero variance indicates full reconciliation.
func ComputeTotals(left, right []*models.Transaction, statusFilter string, convention models.SignConvention) (models.Totals, error) {
	if !convention.IsValid() {
		return models.Totals{}, errors.ConfigurationError(
			errors.CodeInvalidConfig, "sign_convention", string(convention), nil)
	}

	leftTotal := sumAmounts(left, statusFilter)
	rightTotal := sumAmounts(right, statusFilter)

	var variance decimal.Decimal
	switch convention {
	case models.ConventionOpposite:
		variance = leftTotal.Add(rightTotal)
	default:
		variance = leftTotal.Sub(rightTotal)
	}

	return models.Totals{
		LeftTotal:    leftTotal,
		RightTotal:   rightTotal,
		Variance:     variance,
		Convention:   convention,
		StatusFilter: statusFilter,
	}, nil
}

func sumAmounts(transactions []*models.Transaction, statusFilter string) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		if statusFilter != "" && tx.Status != statusFilter {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total
}
