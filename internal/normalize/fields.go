// Package normalize converts raw heterogeneous ledger fields into canonical
// form: decimal amounts stripped of currency noise, dates reordered from
// their source layout into YYYY-MM-DD, and trimmed identifier strings.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ledgermatch/internal/models"
	"ledgermatch/pkg/errors"

	"github.com/shopspring/decimal"
)

var currencyReplacer = strings.NewReplacer(
	"$", "",
	"£", "",
	"€", "",
	"¥", "",
	",", "",
	" ", "",
	"\t", "",
)

// CleanAmount strips currency symbols, thousands separators and whitespace
// from a raw amount string and parses the remainder as a decimal. Empty or
// unparseable input yields zero; a bad cell must never abort a whole-file
// reconciliation.
func CleanAmount(raw string) decimal.Decimal {
	cleaned := strings.TrimSpace(currencyReplacer.Replace(raw))
	if cleaned == "" {
		return decimal.Zero
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}

	return amount
}

// ParseDate converts a raw date string into a calendar date according to the
// source layout. The components are reordered and validated as an explicit
// year/month/day triple; the raw text is never handed to a locale-aware
// parser, so no timezone interpretation can shift the day.
//
// Empty input returns the zero time with no error. An unsupported format is
// a configuration error; a value that does not form a real calendar date is
// a validation error.
func ParseDate(raw string, format models.DateFormat) (time.Time, error) {
	if !format.IsValid() {
		return time.Time{}, errors.ConfigurationError(
			errors.CodeUnsupportedDateFormat, "date_format", format.String(), nil)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}

	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == '-'
	})
	if len(parts) != 3 {
		return time.Time{}, errors.ValidationError(
			errors.CodeInvalidDate, "date", raw,
			fmt.Errorf("expected 3 date components, got %d", len(parts)))
	}

	var year, month, day int
	var err error
	switch format {
	case models.DateFormatISO:
		year, month, day, err = atoiTriple(parts[0], parts[1], parts[2])
	case models.DateFormatDMYSlash, models.DateFormatDMYDash:
		day, month, year, err = atoiTriple(parts[0], parts[1], parts[2])
	case models.DateFormatMDYSlash, models.DateFormatMDYDash:
		month, day, year, err = atoiTriple(parts[0], parts[1], parts[2])
	}
	if err != nil {
		return time.Time{}, errors.ValidationError(errors.CodeInvalidDate, "date", raw, err)
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	// time.Date normalizes out-of-range components (month 13 rolls into the
	// next year), so a round-trip comparison detects impossible dates.
	y, m, d := date.Date()
	if y != year || int(m) != month || d != day {
		return time.Time{}, errors.ValidationError(
			errors.CodeInvalidDate, "date", raw,
			fmt.Errorf("%04d-%02d-%02d is not a real calendar date", year, month, day))
	}

	return date, nil
}

func atoiTriple(a, b, c string) (int, int, int, error) {
	first, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("non-numeric date component '%s'", a)
	}
	second, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("non-numeric date component '%s'", b)
	}
	third, err := strconv.Atoi(c)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("non-numeric date component '%s'", c)
	}
	return first, second, third, nil
}
