package schema

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCoerceNumeric_StripsCurrencyAndSeparators(t *testing.T) {
	cases := map[string]string{
		"1000":      "1000",
		"₹1,180.00": "1180.00",
		"18%":       "18",
		" 2 ":       "2",
		"-75.77":    "-75.77",
	}

	for raw, want := range cases {
		got, ok := CoerceNumeric(raw)
		if !ok {
			t.Errorf("CoerceNumeric(%q) unexpectedly failed", raw)
			continue
		}
		expected, _ := decimal.NewFromString(want)
		if !got.Equal(expected) {
			t.Errorf("CoerceNumeric(%q) = %s, want %s", raw, got, expected)
		}
	}
}

func TestCoerceNumeric_RejectsMalformedResiduals(t *testing.T) {
	// Stripping can merge distinct malformed inputs into residuals like
	// "1.2.3"; all of them must fail deterministically.
	for _, raw := range []string{"", "   ", "abc", "1.2.3", "-", ".", "12-3", "N/A"} {
		if _, ok := CoerceNumeric(raw); ok {
			t.Errorf("CoerceNumeric(%q) unexpectedly succeeded", raw)
		}
	}
}

func TestParseDate_KnownFormats(t *testing.T) {
	for _, raw := range []string{
		"2024-04-15",
		"15-04-2024",
		"15/04/2024",
		"20240415",
		"15-Apr-2024",
	} {
		parsed, ok := ParseDate(raw)
		if !ok {
			t.Errorf("ParseDate(%q) failed", raw)
			continue
		}
		if parsed.Format("20060102") != "20240415" {
			t.Errorf("ParseDate(%q) = %s, want 2024-04-15", raw, parsed)
		}
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, raw := range []string{"", "not a date", "2024-13-45"} {
		if _, ok := ParseDate(raw); ok {
			t.Errorf("ParseDate(%q) unexpectedly succeeded", raw)
		}
	}
}

func TestFieldClasses(t *testing.T) {
	if !FieldDate.IsRequired() || !FieldDate.IsDate() || FieldDate.IsNumeric() {
		t.Error("date field classes are wrong")
	}
	if FieldIGST.IsRequired() {
		t.Error("igst should be optional")
	}
	if !FieldQuantity.IsNumeric() || !FieldQuantity.IsRequired() {
		t.Error("quantity should be numeric and required")
	}
	if FieldState.IsNumeric() || FieldState.IsRequired() {
		t.Error("state should be optional free text")
	}
}

func TestDisplayName(t *testing.T) {
	if got := FieldTaxableValue.DisplayName(); got != "Taxable Value" {
		t.Errorf("DisplayName = %q, want %q", got, "Taxable Value")
	}
	if got := FieldIGST.DisplayName(); got != "IGST" {
		t.Errorf("DisplayName = %q, want %q", got, "IGST")
	}
}

func TestNewBlankMapping_Total(t *testing.T) {
	m := NewBlankMapping()
	if len(m) != len(AllFields) {
		t.Fatalf("blank mapping has %d entries, want %d", len(m), len(AllFields))
	}
	for _, f := range AllFields {
		if m.IsMapped(f) {
			t.Errorf("blank mapping has %s mapped", f)
		}
	}
}

func TestParseField(t *testing.T) {
	if f, ok := ParseField("gstRate"); !ok || f != FieldGSTRate {
		t.Errorf("ParseField(gstRate) = %v, %v", f, ok)
	}
	if _, ok := ParseField("invoice_no"); ok {
		t.Error("ParseField accepted an unknown identifier")
	}
}
