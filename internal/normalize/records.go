package normalize

import (
	"fmt"
	"time"

	"ledgermatch/internal/models"
	"ledgermatch/pkg/errors"
	"ledgermatch/pkg/logger"
)

// requiredFields are the raw fields a row must carry to normalize at all.
// reference and due_date are optional: reference defaults to empty string,
// due_date to an unknown date.
var requiredFields = []string{
	models.FieldTransactionNumber,
	models.FieldTransactionType,
	models.FieldAmount,
	models.FieldIssueDate,
	models.FieldStatus,
}

// Normalizer converts raw record batches from one ledger side into canonical
// transactions using that side's date format.
type Normalizer struct {
	format models.DateFormat
	logger logger.Logger
}

// NewNormalizer creates a Normalizer for the given date format. An
// unsupported format is rejected immediately: silently absorbing it would
// miscanonicalize every row of the batch.
func NewNormalizer(format models.DateFormat) (*Normalizer, error) {
	if !format.IsValid() {
		return nil, errors.ConfigurationError(
			errors.CodeUnsupportedDateFormat, "date_format", format.String(), nil)
	}

	return &Normalizer{
		format: format,
		logger: logger.GetGlobalLogger().WithComponent("normalizer"),
	}, nil
}

// Format returns the date format this normalizer applies.
func (n *Normalizer) Format() models.DateFormat {
	return n.format
}

// NormalizeRecords converts raw rows into canonical transactions in input
// order. Rows that fail validation are skipped and reported through the
// returned RowErrors rather than aborting the batch; the batch as a whole
// fails only when a non-empty input yields zero valid rows.
func (n *Normalizer) NormalizeRecords(rows []models.RawRecord) ([]*models.Transaction, *errors.RowErrors, error) {
	transactions := make([]*models.Transaction, 0, len(rows))
	rowErrors := errors.NewRowErrors()

	for i, row := range rows {
		tx, err := n.normalizeRecord(row)
		if err != nil {
			n.logger.WithError(err).WithField("row", i+1).Debug("Rejected row during normalization")
			rowErrors.Add(i+1, err)
			continue
		}
		transactions = append(transactions, tx)
	}

	if len(rows) > 0 && len(transactions) == 0 {
		return nil, rowErrors, errors.ValidationError(
			errors.CodeNoValidData, "records", len(rows),
			fmt.Errorf("all %d rows failed validation", len(rows)))
	}

	n.logger.WithFields(logger.Fields{
		"rows_in":     len(rows),
		"rows_valid":  len(transactions),
		"rows_failed": rowErrors.Total,
		"date_format": n.format.String(),
	}).Debug("Normalized record batch")

	return transactions, rowErrors, nil
}

// normalizeRecord converts one raw row. The amount field must be present but
// an unparseable value degrades to zero; dates must form real calendar days.
func (n *Normalizer) normalizeRecord(row models.RawRecord) (*models.Transaction, *errors.ReconcilerError) {
	for _, field := range requiredFields {
		if field == models.FieldAmount {
			// Presence check only: CleanAmount handles any value.
			if _, ok := row[models.FieldAmount]; !ok {
				return nil, errors.ValidationError(errors.CodeMissingField, field, nil, nil)
			}
			continue
		}
		if !row.Has(field) {
			return nil, errors.ValidationError(errors.CodeMissingField, field, row.Get(field), nil)
		}
	}

	issueDate, err := ParseDate(row.Get(models.FieldIssueDate), n.format)
	if err != nil {
		recErr, ok := errors.AsReconcilerError(err)
		if !ok {
			recErr = errors.ValidationError(
				errors.CodeInvalidDate, models.FieldIssueDate, row.Get(models.FieldIssueDate), err)
		}
		return nil, recErr.WithContext("field", models.FieldIssueDate)
	}
	if issueDate.IsZero() {
		return nil, errors.ValidationError(
			errors.CodeMissingField, models.FieldIssueDate, row.Get(models.FieldIssueDate), nil)
	}

	// due_date is optional; an unparseable value degrades to unknown.
	dueDate, err := ParseDate(row.Get(models.FieldDueDate), n.format)
	if err != nil {
		dueDate = time.Time{}
	}

	return &models.Transaction{
		TransactionNumber: row.Get(models.FieldTransactionNumber),
		Type:              row.Get(models.FieldTransactionType),
		Amount:            CleanAmount(row.Get(models.FieldAmount)),
		IssueDate:         issueDate,
		DueDate:           dueDate,
		Status:            row.Get(models.FieldStatus),
		Reference:         row.Get(models.FieldReference),
	}, nil
}
