// =============================================================================
// Tally Bridge - Voucher Exporter
// =============================================================================
//
// This module renders canonical transactions into the Tally voucher-import
// XML document. The tag names and nesting below are fixed by the downstream
// import; changing them breaks the import even when the document stays
// well-formed XML.
//
// DOCUMENT STRUCTURE:
//   <ENVELOPE>
//     <HEADER><TALLYREQUEST>Import Data</TALLYREQUEST></HEADER>
//     <BODY><IMPORTDATA>
//       <REQUESTDESC>
//         <REPORTNAME>Vouchers</REPORTNAME>
//         <STATICVARIABLES><SVCURRENTCOMPANY>...</SVCURRENTCOMPANY></STATICVARIABLES>
//       </REQUESTDESC>
//       <REQUESTDATA>
//         <TALLYMESSAGE xmlns:UDF="TallyUDF">   <!-- one per transaction -->
//           <VOUCHER VCHTYPE="Sales" ACTION="Create" OBJVIEW="Accounting Voucher View">
//             ...voucher fields and ALLLEDGERENTRIES.LIST blocks...
//           </VOUCHER>
//         </TALLYMESSAGE>
//       </REQUESTDATA>
//     </IMPORTDATA></BODY>
//   </ENVELOPE>
//
// =============================================================================

package export

import (
	"bufio"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"tallybridge/internal/builder"
	"tallybridge/internal/ledger"
	"tallybridge/internal/schema"
)

// DefaultCompany is the company the vouchers import into unless configured
// otherwise.
const DefaultCompany = "Ecommerce Sales"

// fallbackDate substitutes for a voucher date that fails to parse, so a bad
// date cell degrades instead of aborting the export. 1 April is the start of
// the Indian fiscal year.
const fallbackDate = "20240401"

// fallbackRate applies when a transaction carries no positive GST rate but
// its tax amounts still need ledger names.
var fallbackRate = decimal.NewFromInt(18)

// unitSuffix is appended to quantities and per-unit rates in inventory
// entries.
const unitSuffix = "Nos"

// Exporter renders transactions into the voucher document.
type Exporter struct {
	// Company fills SVCURRENTCOMPANY. Empty means DefaultCompany.
	Company string

	// Overrides renames ledgers at export time, keyed by default name.
	Overrides ledger.Overrides
}

// Export renders the whole batch into a single string.
func (e *Exporter) Export(transactions []builder.Transaction) string {
	var b strings.Builder
	// strings.Builder never returns a write error.
	_ = e.Write(&b, transactions)
	return b.String()
}

// Write stream-serializes the document, one voucher per transaction in
// transaction order, so large batches are never held in memory twice.
func (e *Exporter) Write(w io.Writer, transactions []builder.Transaction) error {
	bw := bufio.NewWriter(w)

	company := e.Company
	if company == "" {
		company = DefaultCompany
	}

	bw.WriteString("<ENVELOPE>\n")
	bw.WriteString("  <HEADER>\n")
	bw.WriteString("    <TALLYREQUEST>Import Data</TALLYREQUEST>\n")
	bw.WriteString("  </HEADER>\n")
	bw.WriteString("  <BODY>\n")
	bw.WriteString("    <IMPORTDATA>\n")
	bw.WriteString("      <REQUESTDESC>\n")
	bw.WriteString("        <REPORTNAME>Vouchers</REPORTNAME>\n")
	bw.WriteString("        <STATICVARIABLES>\n")
	bw.WriteString("          <SVCURRENTCOMPANY>" + escapeXML(company) + "</SVCURRENTCOMPANY>\n")
	bw.WriteString("        </STATICVARIABLES>\n")
	bw.WriteString("      </REQUESTDESC>\n")
	bw.WriteString("      <REQUESTDATA>\n")

	for i := range transactions {
		e.writeVoucher(bw, &transactions[i])
	}

	bw.WriteString("      </REQUESTDATA>\n")
	bw.WriteString("    </IMPORTDATA>\n")
	bw.WriteString("  </BODY>\n")
	bw.WriteString("</ENVELOPE>\n")

	return bw.Flush()
}

// =============================================================================
// VOUCHER RENDERING
// =============================================================================

// writeVoucher renders one transaction as a TALLYMESSAGE/VOUCHER block.
// The party entry is a debit for the gross total; the sales entry credits the
// taxable value and carries the inventory sub-entry; tax entries appear only
// when the transaction's own amounts justify them, independent of what the
// batch-level ledger guide surfaced.
func (e *Exporter) writeVoucher(bw *bufio.Writer, t *builder.Transaction) {
	rate := t.GSTRate
	if !rate.IsPositive() {
		rate = fallbackRate
	}

	bw.WriteString("        <TALLYMESSAGE xmlns:UDF=\"TallyUDF\">\n")
	bw.WriteString("          <VOUCHER VCHTYPE=\"Sales\" ACTION=\"Create\" OBJVIEW=\"Accounting Voucher View\">\n")
	writeField(bw, "            ", "DATE", renderDate(t.Date))
	writeField(bw, "            ", "VOUCHERTYPENAME", "Sales")
	writeField(bw, "            ", "REFERENCE", t.InvoiceNo)
	writeField(bw, "            ", "PARTYLEDGERNAME", t.CustomerName)
	writeField(bw, "            ", "STATENAME", t.State)

	// Party debit for the gross total.
	e.writeLedgerEntry(bw, t.CustomerName, true, t.TotalAmount.Neg(), nil)

	// Sales credit for the taxable value, with the inventory sub-entry.
	e.writeLedgerEntry(bw, e.Overrides.Resolve(ledger.SalesName(rate)), false, t.TaxableValue, t)

	// Tax credits, at most the lines this transaction's own fields justify.
	if t.IGST.IsPositive() {
		e.writeLedgerEntry(bw, e.Overrides.Resolve(ledger.IGSTName(rate)), false, t.IGST, nil)
	} else if t.CGST.IsPositive() || t.SGST.IsPositive() {
		e.writeLedgerEntry(bw, e.Overrides.Resolve(ledger.CGSTName(rate)), false, t.CGST, nil)
		e.writeLedgerEntry(bw, e.Overrides.Resolve(ledger.SGSTName(rate)), false, t.SGST, nil)
	}

	bw.WriteString("          </VOUCHER>\n")
	bw.WriteString("        </TALLYMESSAGE>\n")
}

// writeLedgerEntry renders one ALLLEDGERENTRIES.LIST block. A non-nil
// inventory transaction adds the INVENTORYENTRIES.LIST sub-entry.
func (e *Exporter) writeLedgerEntry(bw *bufio.Writer, name string, deemedPositive bool, amount decimal.Decimal, inventory *builder.Transaction) {
	bw.WriteString("            <ALLLEDGERENTRIES.LIST>\n")
	writeField(bw, "              ", "LEDGERNAME", name)
	if deemedPositive {
		writeField(bw, "              ", "ISDEEMEDPOSITIVE", "Yes")
	} else {
		writeField(bw, "              ", "ISDEEMEDPOSITIVE", "No")
	}
	writeField(bw, "              ", "AMOUNT", amount.StringFixed(2))

	if inventory != nil {
		writeInventoryEntry(bw, inventory)
	}

	bw.WriteString("            </ALLLEDGERENTRIES.LIST>\n")
}

// writeInventoryEntry renders the INVENTORYENTRIES.LIST sub-entry of the
// sales credit: stock item, per-unit rate, amount, and quantities with the
// fixed unit suffix. Quantity is never zero by construction, so the division
// is safe.
func writeInventoryEntry(bw *bufio.Writer, t *builder.Transaction) {
	perUnit := t.TaxableValue.Div(t.Quantity).Round(2)
	qty := formatQuantity(t.Quantity) + " " + unitSuffix

	bw.WriteString("              <INVENTORYENTRIES.LIST>\n")
	writeField(bw, "                ", "STOCKITEMNAME", t.ProductName)
	writeField(bw, "                ", "RATE", perUnit.StringFixed(2)+"/"+unitSuffix)
	writeField(bw, "                ", "AMOUNT", t.TaxableValue.StringFixed(2))
	writeField(bw, "                ", "ACTUALQTY", qty)
	writeField(bw, "                ", "BILLEDQTY", qty)
	bw.WriteString("              </INVENTORYENTRIES.LIST>\n")
}

// =============================================================================
// HELPERS
// =============================================================================

// writeField renders one simple element with an escaped text value.
func writeField(bw *bufio.Writer, indent, tag, value string) {
	bw.WriteString(indent)
	bw.WriteString("<")
	bw.WriteString(tag)
	bw.WriteString(">")
	bw.WriteString(escapeXML(value))
	bw.WriteString("</")
	bw.WriteString(tag)
	bw.WriteString(">\n")
}

// renderDate normalizes the voucher date to the 8-digit YYYYMMDD form Tally
// expects, degrading to fallbackDate when the source date does not parse.
func renderDate(raw string) string {
	t, ok := schema.ParseDate(raw)
	if !ok {
		return fallbackDate
	}
	return t.Format("20060102")
}

// formatQuantity renders a quantity without trailing zeros: 2 -> "2",
// 2.50 -> "2.5".
func formatQuantity(qty decimal.Decimal) string {
	return ledger.FormatRate(qty)
}

// escapeXML substitutes the five XML special characters with their entities.
// Every string inserted into element content goes through this; unescaped
// injection corrupts the document.
func escapeXML(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}
