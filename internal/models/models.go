// Package models defines the canonical domain types shared by the
// ledgermatch engine: raw input records, normalized transactions, match
// pairs and aggregate totals.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Raw record field names as delivered by the upload/API collaborators.
const (
	FieldTransactionNumber = "transaction_number"
	FieldTransactionType   = "transaction_type"
	FieldAmount            = "amount"
	FieldIssueDate         = "issue_date"
	FieldDueDate           = "due_date"
	FieldStatus            = "status"
	FieldReference         = "reference"
)

// ISODateLayout is the canonical date layout all normalized dates use.
const ISODateLayout = "2006-01-02"

// RawRecord is one externally supplied row: a string-keyed mapping of raw
// field values. The engine reads it, never mutates it.
type RawRecord map[string]string

// Get returns the trimmed value for a field, or empty string when absent.
func (r RawRecord) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Has reports whether the field is present with a non-empty value.
func (r RawRecord) Has(field string) bool {
	return r.Get(field) != ""
}

// DateFormat identifies the layout of date strings in a raw source.
// AR and AP sides may each use a different format.
type DateFormat string

const (
	DateFormatISO      DateFormat = "YYYY-MM-DD"
	DateFormatDMYSlash DateFormat = "DD/MM/YYYY"
	DateFormatMDYSlash DateFormat = "MM/DD/YYYY"
	DateFormatDMYDash  DateFormat = "DD-MM-YYYY"
	DateFormatMDYDash  DateFormat = "MM-DD-YYYY"
)

// String returns the format token as supplied by callers.
func (f DateFormat) String() string {
	return string(f)
}

// IsValid checks if the date format is one of the supported layouts.
func (f DateFormat) IsValid() bool {
	switch f {
	case DateFormatISO, DateFormatDMYSlash, DateFormatMDYSlash, DateFormatDMYDash, DateFormatMDYDash:
		return true
	default:
		return false
	}
}

// SupportedDateFormats lists every accepted DateFormat token.
func SupportedDateFormats() []DateFormat {
	return []DateFormat{
		DateFormatISO,
		DateFormatDMYSlash,
		DateFormatMDYSlash,
		DateFormatDMYDash,
		DateFormatMDYDash,
	}
}

// Transaction is the canonical record produced by normalization. It is a
// value created once per raw row; the matcher and aggregator only read it.
type Transaction struct {
	TransactionNumber string          `json:"transaction_number"`
	Type              string          `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	IssueDate         time.Time       `json:"issue_date"` // zero means unknown
	DueDate           time.Time       `json:"due_date"`   // zero means unknown
	Status            string          `json:"status"`
	Reference         string          `json:"reference"`
}

// HasIssueDate reports whether the issue date was parseable.
func (t *Transaction) HasIssueDate() bool {
	return !t.IssueDate.IsZero()
}

// HasDueDate reports whether the due date was parseable.
func (t *Transaction) HasDueDate() bool {
	return !t.DueDate.IsZero()
}

// IssueDateString returns the canonical YYYY-MM-DD issue date, or empty
// string when unknown.
func (t *Transaction) IssueDateString() string {
	return FormatDate(t.IssueDate)
}

// DueDateString returns the canonical YYYY-MM-DD due date, or empty string
// when unknown.
func (t *Transaction) DueDateString() string {
	return FormatDate(t.DueDate)
}

// AmountRounded returns the amount rounded to two decimal places, the
// precision used for match comparison.
func (t *Transaction) AmountRounded() decimal.Decimal {
	return t.Amount.Round(2)
}

// String returns a compact representation for logs.
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{Number: %s, Type: %s, Amount: %s, IssueDate: %s, Status: %s}",
		t.TransactionNumber, t.Type, t.Amount.String(), t.IssueDateString(), t.Status)
}

// Equals compares two transactions on every canonical field.
func (t *Transaction) Equals(other *Transaction) bool {
	if other == nil {
		return false
	}

	return t.TransactionNumber == other.TransactionNumber &&
		t.Type == other.Type &&
		t.Amount.Equal(other.Amount) &&
		t.IssueDateString() == other.IssueDateString() &&
		t.DueDateString() == other.DueDateString() &&
		t.Status == other.Status &&
		t.Reference == other.Reference
}

// MarshalJSON renders amounts as decimal strings and dates as canonical
// YYYY-MM-DD strings or null.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Amount    string  `json:"amount"`
		IssueDate *string `json:"issue_date"`
		DueDate   *string `json:"due_date"`
		*Alias
	}{
		Amount:    t.Amount.String(),
		IssueDate: nullableDate(t.IssueDate),
		DueDate:   nullableDate(t.DueDate),
		Alias:     (*Alias)(t),
	})
}

// UnmarshalJSON accepts the shape produced by MarshalJSON.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type Alias Transaction
	aux := &struct {
		Amount    string  `json:"amount"`
		IssueDate *string `json:"issue_date"`
		DueDate   *string `json:"due_date"`
		*Alias
	}{
		Alias: (*Alias)(t),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	t.Amount, err = decimal.NewFromString(aux.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount format: %w", err)
	}

	if t.IssueDate, err = parseNullableDate(aux.IssueDate); err != nil {
		return fmt.Errorf("invalid issue date: %w", err)
	}
	if t.DueDate, err = parseNullableDate(aux.DueDate); err != nil {
		return fmt.Errorf("invalid due date: %w", err)
	}

	return nil
}

// FormatDate renders a date in the canonical YYYY-MM-DD layout, or empty
// string for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(ISODateLayout)
}

func nullableDate(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(ISODateLayout)
	return &s
}

func parseNullableDate(s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, nil
	}
	return time.Parse(ISODateLayout, *s)
}

// Differences records which compared fields disagreed in a mismatched pair.
type Differences struct {
	Amount    bool `json:"amount"`
	IssueDate bool `json:"issue_date"`
	Status    bool `json:"status"`
	Type      bool `json:"type"`
}

// Any reports whether at least one compared field disagreed.
func (d Differences) Any() bool {
	return d.Amount || d.IssueDate || d.Status || d.Type
}

// MatchPair associates a left-side transaction with its right-side
// counterpart. Perfect matches carry no differences.
type MatchPair struct {
	Left        *Transaction `json:"left"`
	Right       *Transaction `json:"right"`
	Differences *Differences `json:"differences,omitempty"`
}

// IsPerfect reports whether the pair agreed on every compared field.
func (p *MatchPair) IsPerfect() bool {
	return p.Differences == nil
}

// SignConvention declares how the two sides encode amount signs, which in
// turn decides how variance is computed.
type SignConvention string

const (
	// ConventionMirrored means both sides record positive amounts; the AR
	// total is expected to equal the AP total and variance is left - right.
	ConventionMirrored SignConvention = "mirrored"

	// ConventionOpposite means one side already carries negated amounts
	// (AR positive, AP negative); variance is left + right.
	ConventionOpposite SignConvention = "opposite"
)

// IsValid checks if the sign convention is supported.
func (c SignConvention) IsValid() bool {
	return c == ConventionMirrored || c == ConventionOpposite
}

// Totals holds per-side aggregate amounts and their variance, together with
// the filter and convention that produced them.
type Totals struct {
	LeftTotal    decimal.Decimal `json:"left_total"`
	RightTotal   decimal.Decimal `json:"right_total"`
	Variance     decimal.Decimal `json:"variance"`
	Convention   SignConvention  `json:"convention"`
	StatusFilter string          `json:"status_filter,omitempty"`
}

// MarshalJSON renders the decimal totals as strings.
func (t Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		LeftTotal    string         `json:"left_total"`
		RightTotal   string         `json:"right_total"`
		Variance     string         `json:"variance"`
		Convention   SignConvention `json:"convention"`
		StatusFilter string         `json:"status_filter,omitempty"`
	}{
		LeftTotal:    t.LeftTotal.StringFixed(2),
		RightTotal:   t.RightTotal.StringFixed(2),
		Variance:     t.Variance.StringFixed(2),
		Convention:   t.Convention,
		StatusFilter: t.StatusFilter,
	})
}
