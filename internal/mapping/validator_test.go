package mapping

import (
	"reflect"
	"strings"
	"testing"

	"tallybridge/internal/ingest"
	"tallybridge/internal/schema"
)

// fullMapping returns a mapping that binds every required field against the
// standardSource headers.
func fullMapping() schema.Mapping {
	m := schema.NewBlankMapping()
	m[schema.FieldDate] = "Date"
	m[schema.FieldInvoiceNo] = "Invoice No"
	m[schema.FieldCustomerName] = "Name"
	m[schema.FieldTaxableValue] = "Taxable Value"
	m[schema.FieldTotalAmount] = "Invoice Amount"
	m[schema.FieldGSTRate] = "Rate"
	m[schema.FieldProductName] = "Item"
	m[schema.FieldQuantity] = "Qty"
	return m
}

func standardSource() *ingest.Source {
	return ingest.ParseCSV("amazon.csv",
		"Date,Invoice No,Name,Taxable Value,IGST,Rate,Qty,Item,Invoice Amount\n"+
			"2024-04-15,INV001,Alice,1000,180,18,2,Widget,18000\n"+
			"2024-04-16,INV002,Bob,500,90,18,1,Gadget,590\n")
}

func TestValidate_AcceptsCompleteMapping(t *testing.T) {
	result := Validate(fullMapping(), []*ingest.Source{standardSource()})

	if !result.Acceptable() {
		t.Fatalf("expected acceptable mapping, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}

func TestValidate_RequiredFieldMissing(t *testing.T) {
	m := fullMapping()
	m[schema.FieldDate] = ""

	result := Validate(m, []*ingest.Source{standardSource()})

	if result.Acceptable() {
		t.Fatal("expected rejection when a required field is unmapped")
	}
	if _, ok := result.Errors[schema.FieldDate]; !ok {
		t.Errorf("expected an error on date, got %v", result.Errors)
	}
}

func TestValidate_OptionalFieldMayStayUnmapped(t *testing.T) {
	// igst, cgst, sgst, state are optional: no error, no warning.
	result := Validate(fullMapping(), []*ingest.Source{standardSource()})

	for _, f := range []schema.Field{schema.FieldIGST, schema.FieldCGST, schema.FieldSGST, schema.FieldState} {
		if _, ok := result.Errors[f]; ok {
			t.Errorf("unexpected error on optional field %s", f)
		}
	}
}

func TestValidate_DuplicateHeadersNameEachOther(t *testing.T) {
	m := fullMapping()
	m[schema.FieldTaxableValue] = "Invoice Amount" // collides with totalAmount

	result := Validate(m, []*ingest.Source{standardSource()})

	if result.Acceptable() {
		t.Fatal("expected rejection for a duplicated header")
	}

	taxErr, ok := result.Errors[schema.FieldTaxableValue]
	if !ok || !strings.Contains(taxErr, "Total Amount") {
		t.Errorf("taxableValue error = %q, want it to name Total Amount", taxErr)
	}
	totalErr, ok := result.Errors[schema.FieldTotalAmount]
	if !ok || !strings.Contains(totalErr, "Taxable Value") {
		t.Errorf("totalAmount error = %q, want it to name Taxable Value", totalErr)
	}
}

func TestValidate_NumericSampleWarning(t *testing.T) {
	source := ingest.ParseCSV("bad.csv",
		"Date,Invoice No,Name,Taxable Value,Rate,Qty,Item,Invoice Amount\n"+
			"2024-04-15,INV001,Alice,not-a-number,18,2,Widget,1180\n")

	result := Validate(fullMapping(), []*ingest.Source{source})

	if !result.Acceptable() {
		t.Fatalf("warnings must not block, got errors: %v", result.Errors)
	}
	if _, ok := result.Warnings[schema.FieldTaxableValue]; !ok {
		t.Errorf("expected a warning on taxableValue, got %v", result.Warnings)
	}
}

func TestValidate_BlankSamplesPassNumericCheck(t *testing.T) {
	source := ingest.ParseCSV("blanks.csv",
		"Date,Invoice No,Name,Taxable Value,Rate,Qty,Item,Invoice Amount\n"+
			"2024-04-15,INV001,Alice,,18,2,Widget,1180\n")

	result := Validate(fullMapping(), []*ingest.Source{source})

	if _, ok := result.Warnings[schema.FieldTaxableValue]; ok {
		t.Error("blank sample must pass the numeric check trivially")
	}
}

func TestValidate_DateSampleWarning(t *testing.T) {
	source := ingest.ParseCSV("bad.csv",
		"Date,Invoice No,Name,Taxable Value,Rate,Qty,Item,Invoice Amount\n"+
			"someday,INV001,Alice,1000,18,2,Widget,1180\n")

	result := Validate(fullMapping(), []*ingest.Source{source})

	if !result.Acceptable() {
		t.Fatalf("warnings must not block, got errors: %v", result.Errors)
	}
	if _, ok := result.Warnings[schema.FieldDate]; !ok {
		t.Errorf("expected a warning on date, got %v", result.Warnings)
	}
}

func TestValidate_SamplesComeFromFirstSourceWithHeader(t *testing.T) {
	// The first source lacks "Qty"; samples must come from the second.
	first := ingest.ParseCSV("a.csv", "Date,Invoice No\n2024-04-15,INV001\n")
	second := ingest.ParseCSV("b.csv", "Qty,Other\n7,x\n8,y\n9,z\n10,w\n")

	m := schema.NewBlankMapping()
	m[schema.FieldQuantity] = "Qty"

	result := Validate(m, []*ingest.Source{first, second})

	want := []string{"7", "8", "9"}
	if !reflect.DeepEqual(result.Samples[schema.FieldQuantity], want) {
		t.Errorf("samples = %v, want %v", result.Samples[schema.FieldQuantity], want)
	}
}

func TestValidate_RecomputationReflectsMappingEdits(t *testing.T) {
	// Validation is a pure function: fixing the mapping and revalidating
	// clears the error without any hidden state.
	sources := []*ingest.Source{standardSource()}

	m := fullMapping()
	m[schema.FieldQuantity] = ""
	if Validate(m, sources).Acceptable() {
		t.Fatal("expected rejection before the fix")
	}

	m[schema.FieldQuantity] = "Qty"
	if !Validate(m, sources).Acceptable() {
		t.Fatal("expected acceptance after the fix")
	}
}
