package normalize

import (
	"testing"

	"github.com/shopspring/decimal"

	"ledgermatch/internal/models"
	"ledgermatch/pkg/errors"
)

func validRow() models.RawRecord {
	return models.RawRecord{
		"transaction_number": "INV-001",
		"transaction_type":   "INVOICE",
		"amount":             "$1,500.00",
		"issue_date":         "2024-01-15",
		"due_date":           "2024-02-15",
		"status":             "Open",
		"reference":          "PO-77",
	}
}

func TestNewNormalizer(t *testing.T) {
	if _, err := NewNormalizer(models.DateFormatISO); err != nil {
		t.Fatalf("unexpected error for valid format: %v", err)
	}

	_, err := NewNormalizer(models.DateFormat("MM-YYYY"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	recErr, ok := errors.AsReconcilerError(err)
	if !ok || recErr.Code != errors.CodeUnsupportedDateFormat {
		t.Errorf("expected %s, got %v", errors.CodeUnsupportedDateFormat, err)
	}
}

func TestNormalizeRecords(t *testing.T) {
	n, err := NewNormalizer(models.DateFormatISO)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	txs, issues, err := n.NormalizeRecords([]models.RawRecord{validRow()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issues.HasErrors() {
		t.Fatalf("expected no row issues, got %d", issues.Total)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}

	tx := txs[0]
	if tx.TransactionNumber != "INV-001" {
		t.Errorf("transaction number = %q", tx.TransactionNumber)
	}
	if tx.Type != "INVOICE" {
		t.Errorf("type = %q", tx.Type)
	}
	if !tx.Amount.Equal(decimal.NewFromFloat(1500.00)) {
		t.Errorf("amount = %s, want 1500", tx.Amount)
	}
	if tx.IssueDateString() != "2024-01-15" {
		t.Errorf("issue date = %q", tx.IssueDateString())
	}
	if tx.DueDateString() != "2024-02-15" {
		t.Errorf("due date = %q", tx.DueDateString())
	}
	if tx.Status != "Open" {
		t.Errorf("status = %q", tx.Status)
	}
	if tx.Reference != "PO-77" {
		t.Errorf("reference = %q", tx.Reference)
	}
}

func TestNormalizeRecordsOptionalFields(t *testing.T) {
	n, _ := NewNormalizer(models.DateFormatISO)

	row := validRow()
	delete(row, "reference")
	delete(row, "due_date")

	txs, issues, err := n.NormalizeRecords([]models.RawRecord{row})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issues.HasErrors() {
		t.Fatalf("optional fields must not reject the row")
	}
	if txs[0].Reference != "" {
		t.Errorf("missing reference should default to empty, got %q", txs[0].Reference)
	}
	if txs[0].HasDueDate() {
		t.Errorf("missing due date should stay unknown")
	}
}

func TestNormalizeRecordsUnparseableDueDate(t *testing.T) {
	n, _ := NewNormalizer(models.DateFormatISO)

	row := validRow()
	row["due_date"] = "not-a-date"

	txs, issues, err := n.NormalizeRecords([]models.RawRecord{row})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issues.HasErrors() {
		t.Fatalf("bad due date must not reject the row")
	}
	if txs[0].HasDueDate() {
		t.Errorf("unparseable due date should stay unknown")
	}
}

func TestNormalizeRecordsUnparseableAmount(t *testing.T) {
	n, _ := NewNormalizer(models.DateFormatISO)

	row := validRow()
	row["amount"] = "n/a"

	txs, issues, err := n.NormalizeRecords([]models.RawRecord{row})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issues.HasErrors() {
		t.Fatalf("unparseable amount must not reject the row")
	}
	if !txs[0].Amount.IsZero() {
		t.Errorf("unparseable amount should normalize to 0, got %s", txs[0].Amount)
	}
}

func TestNormalizeRecordsRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(models.RawRecord)
	}{
		{"missing transaction number", func(r models.RawRecord) { delete(r, "transaction_number") }},
		{"empty transaction number", func(r models.RawRecord) { r["transaction_number"] = "  " }},
		{"missing type", func(r models.RawRecord) { delete(r, "transaction_type") }},
		{"missing status", func(r models.RawRecord) { delete(r, "status") }},
		{"missing amount key", func(r models.RawRecord) { delete(r, "amount") }},
		{"missing issue date", func(r models.RawRecord) { delete(r, "issue_date") }},
		{"unparseable issue date", func(r models.RawRecord) { r["issue_date"] = "2024-13-45" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, _ := NewNormalizer(models.DateFormatISO)

			bad := validRow()
			tt.mutate(bad)

			txs, issues, err := n.NormalizeRecords([]models.RawRecord{validRow(), bad})
			if err != nil {
				t.Fatalf("one bad row must not fail the batch: %v", err)
			}
			if len(txs) != 1 {
				t.Fatalf("expected 1 surviving transaction, got %d", len(txs))
			}
			if issues.Total != 1 {
				t.Fatalf("expected 1 rejected row, got %d", issues.Total)
			}
			if issues.Errors[0].Row != 2 {
				t.Errorf("expected rejection at row 2, got row %d", issues.Errors[0].Row)
			}
		})
	}
}

func TestNormalizeRecordsAllRowsFail(t *testing.T) {
	n, _ := NewNormalizer(models.DateFormatISO)

	bad := validRow()
	delete(bad, "transaction_number")

	_, issues, err := n.NormalizeRecords([]models.RawRecord{bad, bad})
	if err == nil {
		t.Fatal("expected whole-batch failure when zero rows survive")
	}
	recErr, ok := errors.AsReconcilerError(err)
	if !ok || recErr.Code != errors.CodeNoValidData {
		t.Errorf("expected %s, got %v", errors.CodeNoValidData, err)
	}
	if issues.Total != 2 {
		t.Errorf("expected both rows reported, got %d", issues.Total)
	}
}

func TestNormalizeRecordsEmptyInput(t *testing.T) {
	n, _ := NewNormalizer(models.DateFormatISO)

	txs, issues, err := n.NormalizeRecords(nil)
	if err != nil {
		t.Fatalf("empty input must not fail: %v", err)
	}
	if len(txs) != 0 || issues.HasErrors() {
		t.Errorf("empty input should yield an empty result")
	}
}

func TestNormalizeRecordsPreservesOrder(t *testing.T) {
	n, _ := NewNormalizer(models.DateFormatISO)

	rows := make([]models.RawRecord, 0, 5)
	for _, num := range []string{"A", "B", "C", "D", "E"} {
		row := validRow()
		row["transaction_number"] = num
		rows = append(rows, row)
	}

	txs, _, err := n.NormalizeRecords(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, num := range []string{"A", "B", "C", "D", "E"} {
		if txs[i].TransactionNumber != num {
			t.Errorf("position %d = %q, want %q", i, txs[i].TransactionNumber, num)
		}
	}
}
