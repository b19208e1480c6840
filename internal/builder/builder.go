// =============================================================================
// Tally Bridge - Transaction Builder
// =============================================================================
//
// This package applies an accepted (zero-error) mapping to every raw row of
// every source and produces canonical transactions. Building has no partial
// failure mode: a malformed cell degrades to a default value instead of
// failing the row or the batch.
//
// =============================================================================

package builder

import (
	"github.com/shopspring/decimal"

	"tallybridge/internal/ingest"
	"tallybridge/internal/schema"
)

// PlaceholderProductName substitutes for a blank product name so every
// voucher gets a usable stock item.
const PlaceholderProductName = "Unknown Item"

// Transaction is one canonical sales record. Instances are immutable once
// built and are held in memory until export or session reset.
type Transaction struct {
	// Date keeps the source format; it is only normalized at export time.
	Date string

	InvoiceNo    string
	CustomerName string
	State        string

	// Money fields default to zero when unmapped or unparsable.
	TaxableValue decimal.Decimal
	IGST         decimal.Decimal
	CGST         decimal.Decimal
	SGST         decimal.Decimal
	TotalAmount  decimal.Decimal

	// GSTRate is a percentage, e.g. 18 for 18%.
	GSTRate decimal.Decimal

	ProductName string

	// Quantity is never zero: unmapped, unparsable, and non-positive values
	// all fall back to 1.
	Quantity decimal.Decimal
}

// Build produces one transaction per raw row across all sources,
// concatenated source-by-source with row order preserved. The mapping is
// shared across sources, but each source resolves headers against its own
// header list: a mapped header absent from a particular source simply
// resolves to an empty value there.
func Build(m schema.Mapping, sources []*ingest.Source) []Transaction {
	var transactions []Transaction

	for _, source := range sources {
		columns := resolveColumns(m, source)

		for row := range source.Rows {
			transactions = append(transactions, buildRow(source, columns, row))
		}
	}

	return transactions
}

// resolveColumns locates each mapped header in the source's header list.
// Unmapped fields and headers the source does not carry resolve to -1.
func resolveColumns(m schema.Mapping, source *ingest.Source) map[schema.Field]int {
	columns := make(map[schema.Field]int, len(schema.AllFields))
	for _, field := range schema.AllFields {
		columns[field] = -1
		if header := m.Header(field); header != "" {
			columns[field] = source.ColumnIndex(header)
		}
	}
	return columns
}

// buildRow converts one raw row into a transaction.
func buildRow(source *ingest.Source, columns map[schema.Field]int, row int) Transaction {
	raw := func(field schema.Field) string {
		col := columns[field]
		if col < 0 {
			return ""
		}
		return source.Cell(row, col)
	}

	t := Transaction{
		Date:         raw(schema.FieldDate),
		InvoiceNo:    raw(schema.FieldInvoiceNo),
		CustomerName: raw(schema.FieldCustomerName),
		State:        raw(schema.FieldState),
		TaxableValue: money(raw(schema.FieldTaxableValue)),
		IGST:         money(raw(schema.FieldIGST)),
		CGST:         money(raw(schema.FieldCGST)),
		SGST:         money(raw(schema.FieldSGST)),
		TotalAmount:  money(raw(schema.FieldTotalAmount)),
		GSTRate:      money(raw(schema.FieldGSTRate)),
		ProductName:  raw(schema.FieldProductName),
		Quantity:     quantity(raw(schema.FieldQuantity)),
	}

	if t.ProductName == "" {
		t.ProductName = PlaceholderProductName
	}

	return t
}

// money coerces a raw cell to a decimal, defaulting to zero.
func money(raw string) decimal.Decimal {
	d, ok := schema.CoerceNumeric(raw)
	if !ok {
		return decimal.Zero
	}
	return d
}

// quantity coerces a raw cell to a decimal with a floor default of one.
// A parsed value of zero or below also falls back to one.
func quantity(raw string) decimal.Decimal {
	d, ok := schema.CoerceNumeric(raw)
	if !ok || !d.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return d
}
