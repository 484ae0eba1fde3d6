package parsers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ledgermatch/pkg/errors"
)

const sampleCSV = `transaction_number,transaction_type,amount,issue_date,due_date,status,reference
INV-001,INVOICE,"$1,500.00",2024-01-15,2024-02-15,Open,PO-77
INV-002,CREDIT_NOTE,-250.00,2024-01-20,,Open,
`

func TestParse(t *testing.T) {
	parser := NewLedgerParser(nil)

	records, err := parser.Parse(context.Background(), strings.NewReader(sampleCSV), "sample.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Get("transaction_number") != "INV-001" {
		t.Errorf("transaction_number = %q", first.Get("transaction_number"))
	}
	if first.Get("amount") != "$1,500.00" {
		t.Errorf("amount should pass through raw, got %q", first.Get("amount"))
	}
	if first.Get("reference") != "PO-77" {
		t.Errorf("reference = %q", first.Get("reference"))
	}

	second := records[1]
	if second.Get("due_date") != "" {
		t.Errorf("empty due_date should stay empty, got %q", second.Get("due_date"))
	}
}

func TestParseHeaderCaseInsensitive(t *testing.T) {
	data := "Transaction_Number,TRANSACTION_TYPE,Amount,Issue_Date,Status\nINV-1,INVOICE,10.00,2024-01-01,Open\n"

	parser := NewLedgerParser(nil)
	records, err := parser.Parse(context.Background(), strings.NewReader(data), "mixed.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Get("transaction_number") != "INV-1" {
		t.Errorf("headers should map case-insensitively onto canonical names")
	}
}

func TestParseMissingRequiredColumn(t *testing.T) {
	data := "transaction_number,transaction_type,issue_date,status\nINV-1,INVOICE,2024-01-01,Open\n"

	parser := NewLedgerParser(nil)
	_, err := parser.Parse(context.Background(), strings.NewReader(data), "no_amount.csv")
	if err == nil {
		t.Fatal("expected error for missing amount column")
	}
	recErr, ok := errors.AsReconcilerError(err)
	if !ok || recErr.Code != errors.CodeMissingColumn {
		t.Errorf("expected %s, got %v", errors.CodeMissingColumn, err)
	}
}

func TestParseSkipsEmptyRows(t *testing.T) {
	data := "transaction_number,transaction_type,amount,issue_date,status\nINV-1,INVOICE,10.00,2024-01-01,Open\n,,,,\n"

	parser := NewLedgerParser(nil)
	records, err := parser.Parse(context.Background(), strings.NewReader(data), "gaps.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected the empty row skipped, got %d records", len(records))
	}
}

func TestParseShortRows(t *testing.T) {
	// A row with fewer fields than the header still yields a record; the
	// missing trailing fields are simply absent.
	data := "transaction_number,transaction_type,amount,issue_date,status,reference\nINV-1,INVOICE,10.00,2024-01-01,Open\n"

	parser := NewLedgerParser(nil)
	records, err := parser.Parse(context.Background(), strings.NewReader(data), "short.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Has("reference") {
		t.Errorf("truncated row should drop the trailing column")
	}
}

func TestParseEmptyFile(t *testing.T) {
	parser := NewLedgerParser(nil)
	_, err := parser.Parse(context.Background(), strings.NewReader(""), "empty.csv")
	if err == nil {
		t.Fatal("expected error for a file with no header")
	}
}

func TestParseHeaderOnly(t *testing.T) {
	data := "transaction_number,transaction_type,amount,issue_date,status\n"

	parser := NewLedgerParser(nil)
	records, err := parser.Parse(context.Background(), strings.NewReader(data), "header_only.csv")
	if err != nil {
		t.Fatalf("header-only input should parse: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestParseCustomDelimiter(t *testing.T) {
	data := "transaction_number;transaction_type;amount;issue_date;status\nINV-1;INVOICE;10.00;2024-01-01;Open\n"

	config := DefaultConfig()
	config.Delimiter = ';'
	parser := NewLedgerParser(config)

	records, err := parser.Parse(context.Background(), strings.NewReader(data), "semicolons.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Get("transaction_number") != "INV-1" {
		t.Errorf("semicolon-delimited input did not parse: %v", records)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	parser := NewLedgerParser(nil)
	records, err := parser.ParseFile(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	parser := NewLedgerParser(nil)
	_, err := parser.Parse(ctx, strings.NewReader(sampleCSV), "sample.csv")
	if err == nil {
		t.Fatal("expected error for a cancelled context")
	}
	recErr, ok := errors.AsReconcilerError(err)
	if !ok || recErr.Category != errors.CategoryProcessing {
		t.Errorf("expected processing error, got %v", err)
	}
}

func TestParseFileNotFound(t *testing.T) {
	parser := NewLedgerParser(nil)
	_, err := parser.ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	recErr, ok := errors.AsReconcilerError(err)
	if !ok || recErr.Code != errors.CodeFileNotFound {
		t.Errorf("expected %s, got %v", errors.CodeFileNotFound, err)
	}
}
