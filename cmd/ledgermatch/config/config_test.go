package config

import (
	"testing"

	"ledgermatch/internal/matcher"
	"ledgermatch/internal/models"
	"ledgermatch/internal/reporter"
	"ledgermatch/pkg/errors"
)

func TestResolveDateFormat(t *testing.T) {
	tests := []struct {
		value string
		want  models.DateFormat
	}{
		{"YYYY-MM-DD", models.DateFormatISO},
		{"iso", models.DateFormatISO},
		{"DD/MM/YYYY", models.DateFormatDMYSlash},
		{"dmy", models.DateFormatDMYSlash},
		{"mdy", models.DateFormatMDYSlash},
		{"dmy-dash", models.DateFormatDMYDash},
		{"mdy-dash", models.DateFormatMDYDash},
	}

	for _, tt := range tests {
		got, err := ResolveDateFormat(tt.value)
		if err != nil {
			t.Errorf("ResolveDateFormat(%q) error: %v", tt.value, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveDateFormat(%q) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestResolveDateFormatInvalid(t *testing.T) {
	_, err := ResolveDateFormat("YYYY/MM/DD")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	recErr, ok := errors.AsReconcilerError(err)
	if !ok || recErr.Code != errors.CodeUnsupportedDateFormat {
		t.Errorf("expected %s, got %v", errors.CodeUnsupportedDateFormat, err)
	}
}

func TestResolvePolicy(t *testing.T) {
	for _, value := range []string{"exact", "scored"} {
		policy, err := ResolvePolicy(value)
		if err != nil {
			t.Errorf("ResolvePolicy(%q) error: %v", value, err)
		}
		if string(policy) != value {
			t.Errorf("ResolvePolicy(%q) = %s", value, policy)
		}
	}

	if _, err := ResolvePolicy("fuzzy"); err == nil {
		t.Error("expected error for unsupported policy")
	}
}

func TestResolveConvention(t *testing.T) {
	if convention, err := ResolveConvention(""); err != nil || convention != "" {
		t.Errorf("empty convention should resolve to the per-policy default, got %q, %v", convention, err)
	}
	if convention, err := ResolveConvention("opposite"); err != nil || convention != models.ConventionOpposite {
		t.Errorf("ResolveConvention(opposite) = %q, %v", convention, err)
	}
	if _, err := ResolveConvention("inverted"); err == nil {
		t.Error("expected error for unsupported convention")
	}
}

func TestCreateParserConfig(t *testing.T) {
	config, err := CreateParserConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Delimiter != ',' {
		t.Errorf("default delimiter = %q", config.Delimiter)
	}

	config, err = CreateParserConfig(";")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Delimiter != ';' {
		t.Errorf("delimiter = %q", config.Delimiter)
	}

	if _, err := CreateParserConfig(";;"); err == nil {
		t.Error("expected error for a multi-character delimiter")
	}
}

func TestCreateOptions(t *testing.T) {
	historical := []models.RawRecord{{"transaction_number": "INV-1"}}

	opts := CreateOptions(
		models.DateFormatISO, models.DateFormatDMYSlash,
		matcher.PolicyScoredCandidate, "Open", false,
		models.ConventionOpposite, historical,
	)

	if opts.LeftFormat != models.DateFormatISO || opts.RightFormat != models.DateFormatDMYSlash {
		t.Errorf("date formats not carried: %s / %s", opts.LeftFormat, opts.RightFormat)
	}
	if opts.Policy != matcher.PolicyScoredCandidate {
		t.Errorf("Policy = %s", opts.Policy)
	}
	if opts.Convention != models.ConventionOpposite {
		t.Errorf("Convention = %s", opts.Convention)
	}
	if len(opts.Historical) != 1 {
		t.Errorf("Historical not carried")
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("assembled options should validate: %v", err)
	}
}

func TestCreateReportConfig(t *testing.T) {
	config, err := CreateReportConfig("json", true, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Format != reporter.FormatJSON {
		t.Errorf("Format = %s", config.Format)
	}
	if !config.IncludePerfectMatches {
		t.Error("IncludePerfectMatches not carried")
	}
	if config.MaxListedItems != 10 {
		t.Errorf("MaxListedItems = %d", config.MaxListedItems)
	}

	if _, err := CreateReportConfig("xml", false, 0); err == nil {
		t.Error("expected error for unsupported output format")
	}
}
