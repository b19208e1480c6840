package builder

import (
	"testing"

	"github.com/shopspring/decimal"

	"tallybridge/internal/ingest"
	"tallybridge/internal/schema"
)

func marketplaceMapping() schema.Mapping {
	m := schema.NewBlankMapping()
	m[schema.FieldDate] = "Date"
	m[schema.FieldInvoiceNo] = "Invoice No"
	m[schema.FieldCustomerName] = "Name"
	m[schema.FieldTaxableValue] = "Taxable Value"
	m[schema.FieldIGST] = "IGST"
	m[schema.FieldGSTRate] = "Rate"
	m[schema.FieldQuantity] = "Qty"
	m[schema.FieldProductName] = "Item"
	m[schema.FieldTotalAmount] = "Invoice Amount"
	return m
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestBuild_CanonicalRow(t *testing.T) {
	source := ingest.ParseCSV("amazon.csv",
		"Date,Invoice No,Name,Taxable Value,IGST,Rate,Qty,Item,Invoice Amount\n"+
			"2024-04-15,INV001,Alice,1000,180,18,2,Widget,18000\n")

	transactions := Build(marketplaceMapping(), []*ingest.Source{source})
	if len(transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(transactions))
	}

	got := transactions[0]
	if got.Date != "2024-04-15" || got.InvoiceNo != "INV001" || got.CustomerName != "Alice" {
		t.Errorf("text fields = %q %q %q", got.Date, got.InvoiceNo, got.CustomerName)
	}
	if !got.TaxableValue.Equal(dec("1000")) {
		t.Errorf("TaxableValue = %s, want 1000", got.TaxableValue)
	}
	if !got.IGST.Equal(dec("180")) {
		t.Errorf("IGST = %s, want 180", got.IGST)
	}
	if !got.GSTRate.Equal(dec("18")) {
		t.Errorf("GSTRate = %s, want 18", got.GSTRate)
	}
	if !got.Quantity.Equal(dec("2")) {
		t.Errorf("Quantity = %s, want 2", got.Quantity)
	}
	if !got.TotalAmount.Equal(dec("18000")) {
		t.Errorf("TotalAmount = %s, want 18000", got.TotalAmount)
	}
	if got.ProductName != "Widget" {
		t.Errorf("ProductName = %q, want Widget", got.ProductName)
	}
	if !got.CGST.IsZero() || !got.SGST.IsZero() {
		t.Errorf("unmapped CGST/SGST should be zero, got %s/%s", got.CGST, got.SGST)
	}
}

func TestBuild_UnmappedNumericDefaultsToZero(t *testing.T) {
	source := ingest.ParseCSV("r.csv", "Date,Invoice No\n2024-04-15,INV001\n")

	m := schema.NewBlankMapping()
	m[schema.FieldDate] = "Date"
	m[schema.FieldInvoiceNo] = "Invoice No"

	got := Build(m, []*ingest.Source{source})[0]
	if !got.TaxableValue.IsZero() || !got.IGST.IsZero() || !got.TotalAmount.IsZero() {
		t.Errorf("unmapped money fields should be zero: %+v", got)
	}
}

func TestBuild_QuantityFloorsAtOne(t *testing.T) {
	// Unmapped, zero, negative, and unparsable quantities all become 1.
	source := ingest.ParseCSV("r.csv", "Qty,Other\n0,x\n-3,x\nabc,x\n,x\n")

	m := schema.NewBlankMapping()
	m[schema.FieldQuantity] = "Qty"

	for i, got := range Build(m, []*ingest.Source{source}) {
		if !got.Quantity.Equal(dec("1")) {
			t.Errorf("row %d: Quantity = %s, want 1", i, got.Quantity)
		}
	}
}

func TestBuild_BlankProductNameGetsPlaceholder(t *testing.T) {
	source := ingest.ParseCSV("r.csv", "Item,Other\n,x\n")

	m := schema.NewBlankMapping()
	m[schema.FieldProductName] = "Item"

	got := Build(m, []*ingest.Source{source})[0]
	if got.ProductName != PlaceholderProductName {
		t.Errorf("ProductName = %q, want %q", got.ProductName, PlaceholderProductName)
	}
}

func TestBuild_MalformedResidualsDefaultDeterministically(t *testing.T) {
	// Stripping merges malformed inputs into residuals like "1.2.3"; every
	// one of them degrades to the field default instead of failing the row.
	source := ingest.ParseCSV("r.csv",
		"Taxable Value,Qty\n1.2.3,1.2.3\n-,-\n12-3,12-3\n")

	m := schema.NewBlankMapping()
	m[schema.FieldTaxableValue] = "Taxable Value"
	m[schema.FieldQuantity] = "Qty"

	transactions := Build(m, []*ingest.Source{source})
	if len(transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(transactions))
	}
	for i, got := range transactions {
		if !got.TaxableValue.IsZero() {
			t.Errorf("row %d: TaxableValue = %s, want 0", i, got.TaxableValue)
		}
		if !got.Quantity.Equal(dec("1")) {
			t.Errorf("row %d: Quantity = %s, want 1", i, got.Quantity)
		}
	}
}

func TestBuild_CurrencySymbolsStripped(t *testing.T) {
	source := ingest.ParseCSV("r.csv", "Taxable Value,Other\n₹1180.00,x\n")

	m := schema.NewBlankMapping()
	m[schema.FieldTaxableValue] = "Taxable Value"

	got := Build(m, []*ingest.Source{source})[0]
	if !got.TaxableValue.Equal(dec("1180")) {
		t.Errorf("TaxableValue = %s, want 1180", got.TaxableValue)
	}
}

func TestBuild_SourcesResolveHeadersIndependently(t *testing.T) {
	// The mapping is shared, but each source resolves against its own header
	// list: a header absent from one source resolves to empty there.
	amazon := ingest.ParseCSV("amazon.csv", "Date,Taxable Value\n2024-04-15,1000\n")
	flipkart := ingest.ParseCSV("flipkart.csv", "Date,Other\n2024-04-16,x\n")

	m := schema.NewBlankMapping()
	m[schema.FieldDate] = "Date"
	m[schema.FieldTaxableValue] = "Taxable Value"

	transactions := Build(m, []*ingest.Source{amazon, flipkart})
	if len(transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(transactions))
	}
	if !transactions[0].TaxableValue.Equal(dec("1000")) {
		t.Errorf("amazon TaxableValue = %s, want 1000", transactions[0].TaxableValue)
	}
	if !transactions[1].TaxableValue.IsZero() {
		t.Errorf("flipkart TaxableValue = %s, want 0", transactions[1].TaxableValue)
	}
}

func TestBuild_OrderPreservedAcrossSources(t *testing.T) {
	first := ingest.ParseCSV("a.csv", "Invoice No,Other\nA1,x\nA2,x\n")
	second := ingest.ParseCSV("b.csv", "Invoice No,Other\nB1,x\n")

	m := schema.NewBlankMapping()
	m[schema.FieldInvoiceNo] = "Invoice No"

	transactions := Build(m, []*ingest.Source{first, second})
	want := []string{"A1", "A2", "B1"}
	for i, w := range want {
		if transactions[i].InvoiceNo != w {
			t.Errorf("transactions[%d].InvoiceNo = %q, want %q", i, transactions[i].InvoiceNo, w)
		}
	}
}

func TestBuild_HeaderOnlySourceYieldsNoTransactions(t *testing.T) {
	source := ingest.ParseCSV("r.csv", "Date,Invoice No\n")

	if got := Build(marketplaceMapping(), []*ingest.Source{source}); len(got) != 0 {
		t.Errorf("expected 0 transactions, got %d", len(got))
	}
}
