// =============================================================================
// Tally Bridge - Canonical Schema
// =============================================================================
//
// This package defines the canonical transaction schema that every marketplace
// report is reconciled into, independent of the report's actual column naming.
// Types defined here are shared by:
//   - ingest
//   - mapping
//   - builder
//   - export
//
// =============================================================================

package schema

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CANONICAL FIELDS
// =============================================================================

// Field identifies one of the twelve semantic roles a marketplace report
// column can be mapped to.
type Field string

const (
	FieldDate         Field = "date"
	FieldInvoiceNo    Field = "invoiceNo"
	FieldCustomerName Field = "customerName"
	FieldState        Field = "state"
	FieldTaxableValue Field = "taxableValue"
	FieldIGST         Field = "igst"
	FieldCGST         Field = "cgst"
	FieldSGST         Field = "sgst"
	FieldTotalAmount  Field = "totalAmount"
	FieldGSTRate      Field = "gstRate"
	FieldProductName  Field = "productName"
	FieldQuantity     Field = "quantity"
)

// AllFields lists every canonical field in presentation order. Iteration over
// mappings always goes through this slice so output is deterministic.
var AllFields = []Field{
	FieldDate,
	FieldInvoiceNo,
	FieldCustomerName,
	FieldState,
	FieldTaxableValue,
	FieldIGST,
	FieldCGST,
	FieldSGST,
	FieldTotalAmount,
	FieldGSTRate,
	FieldProductName,
	FieldQuantity,
}

// requiredFields are the fields a mapping must bind before transactions can
// be built. The remaining fields default to zero/blank when unmapped.
var requiredFields = map[Field]bool{
	FieldDate:         true,
	FieldInvoiceNo:    true,
	FieldCustomerName: true,
	FieldTaxableValue: true,
	FieldTotalAmount:  true,
	FieldGSTRate:      true,
	FieldProductName:  true,
	FieldQuantity:     true,
}

// numericFields are coerced through CoerceNumeric when transactions are built.
var numericFields = map[Field]bool{
	FieldTaxableValue: true,
	FieldIGST:         true,
	FieldCGST:         true,
	FieldSGST:         true,
	FieldTotalAmount:  true,
	FieldGSTRate:      true,
	FieldQuantity:     true,
}

// displayNames render fields in human-readable form for error messages and
// review tables.
var displayNames = map[Field]string{
	FieldDate:         "Date",
	FieldInvoiceNo:    "Invoice No",
	FieldCustomerName: "Customer Name",
	FieldState:        "State",
	FieldTaxableValue: "Taxable Value",
	FieldIGST:         "IGST",
	FieldCGST:         "CGST",
	FieldSGST:         "SGST",
	FieldTotalAmount:  "Total Amount",
	FieldGSTRate:      "GST Rate",
	FieldProductName:  "Product Name",
	FieldQuantity:     "Quantity",
}

// IsRequired reports whether the field must be mapped.
func (f Field) IsRequired() bool { return requiredFields[f] }

// IsNumeric reports whether the field carries a numeric value.
func (f Field) IsNumeric() bool { return numericFields[f] }

// IsDate reports whether the field carries a calendar date.
func (f Field) IsDate() bool { return f == FieldDate }

// DisplayName returns the human-readable name of the field.
func (f Field) DisplayName() string {
	if name, ok := displayNames[f]; ok {
		return name
	}
	return string(f)
}

// ParseField resolves a field identifier as it appears in mapping files.
// The boolean is false for identifiers outside the canonical set.
func ParseField(name string) (Field, bool) {
	for _, f := range AllFields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// =============================================================================
// MAPPING
// =============================================================================

// Mapping is a total function from canonical field to a source column header.
// An empty value means the field is unmapped. A mapping may come from a file,
// from a suggestion collaborator, or start blank and be filled in by hand;
// the pipeline treats all three identically.
type Mapping map[Field]string

// NewBlankMapping returns a mapping with every canonical field present and
// unmapped.
func NewBlankMapping() Mapping {
	m := make(Mapping, len(AllFields))
	for _, f := range AllFields {
		m[f] = ""
	}
	return m
}

// Header returns the header mapped to the field, or "" when unmapped.
func (m Mapping) Header(f Field) string {
	return strings.TrimSpace(m[f])
}

// IsMapped reports whether the field is bound to a header.
func (m Mapping) IsMapped(f Field) bool {
	return m.Header(f) != ""
}

// Clone returns an independent copy of the mapping.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(AllFields))
	for _, f := range AllFields {
		out[f] = m[f]
	}
	return out
}

// =============================================================================
// NUMERIC COERCION
// =============================================================================

// CoerceNumeric converts a raw report cell into a decimal. Every rune that is
// not a digit, a minus sign, or a decimal point is stripped first, so values
// like "₹1,180.00" or "18%" coerce cleanly. The boolean is false when the
// residual string does not parse as a number (empty, "-", ".", "1.2.3", ...);
// callers decide the default in that case.
func CoerceNumeric(raw string) (decimal.Decimal, bool) {
	stripped := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			return r
		}
		return -1
	}, raw)

	if stripped == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(stripped)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// =============================================================================
// DATE PARSING
// =============================================================================

// dateFormats are tried in order. Marketplace reports are inconsistent about
// day/month ordering, so ISO formats come first and the ambiguous slash forms
// resolve day-first, which is what Indian marketplace exports use.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"01/02/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
	"2006-01-02 15:04:05",
}

// ParseDate parses a report date cell under generic calendar-date parsing.
// The boolean is false when no known format matches.
func ParseDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
