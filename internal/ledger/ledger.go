// =============================================================================
// Tally Bridge - Ledger Resolution
// =============================================================================
//
// This package derives the accounting ledgers a transaction batch needs: one
// sales ledger per distinct GST rate, plus tax ledgers per rate. The tax
// presence check is batch-global: if any transaction in the batch carries
// IGST, an IGST ledger is emitted for every rate in the batch, and likewise
// for CGST/SGST. A rate used only by IGST transactions therefore still gets
// CGST/SGST entries when some other transaction uses split tax. That is
// observable behavior downstream imports rely on; do not "fix" it.
//
// =============================================================================

package ledger

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tallybridge/internal/builder"
)

// Type tags a ledger as a sales or tax account.
type Type string

const (
	TypeSales Type = "Sales Ledger"
	TypeTax   Type = "Tax Ledger"
)

// Ledger describes one accounting account a voucher batch posts to. The
// default name is the ledger's identity; user renames live in Overrides and
// never mutate it.
type Ledger struct {
	// DefaultName is the derived display name, e.g. "Sales @ 18%".
	DefaultName string

	// Type tags the ledger category.
	Type Type

	// Rate is the GST rate the ledger is associated with. Tax ledgers for
	// CGST/SGST carry the half rate their name shows.
	Rate decimal.Decimal
}

// Overrides maps a ledger's default name to a user-chosen replacement.
// Because the key is the default name, re-deriving ledgers after more
// transactions arrive does not lose prior overrides.
type Overrides map[string]string

// Resolve returns the effective name for a default ledger name: the override
// when present and non-blank, the default otherwise.
func (o Overrides) Resolve(defaultName string) string {
	if override, ok := o[defaultName]; ok && strings.TrimSpace(override) != "" {
		return override
	}
	return defaultName
}

// =============================================================================
// NAME DERIVATION
// =============================================================================

// FormatRate renders a GST rate without trailing zeros: 18 -> "18",
// 2.5 -> "2.5".
func FormatRate(rate decimal.Decimal) string {
	f, _ := rate.Float64()
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// SalesName returns the default sales ledger name for a rate.
func SalesName(rate decimal.Decimal) string {
	return "Sales @ " + FormatRate(rate) + "%"
}

// IGSTName returns the default IGST output ledger name for a rate.
func IGSTName(rate decimal.Decimal) string {
	return "Output IGST @ " + FormatRate(rate) + "%"
}

// CGSTName returns the default CGST output ledger name; CGST carries half
// the rate.
func CGSTName(rate decimal.Decimal) string {
	return "Output CGST @ " + FormatRate(halfRate(rate)) + "%"
}

// SGSTName returns the default SGST output ledger name; SGST carries half
// the rate.
func SGSTName(rate decimal.Decimal) string {
	return "Output SGST @ " + FormatRate(halfRate(rate)) + "%"
}

func halfRate(rate decimal.Decimal) decimal.Decimal {
	return rate.Div(decimal.NewFromInt(2))
}

// =============================================================================
// RESOLUTION
// =============================================================================

// Resolve derives the ledger set for a transaction batch. It is a pure
// function of the batch: idempotent and order-stable, with rates sorted
// ascending and, per rate, sales before IGST before CGST before SGST.
func Resolve(transactions []builder.Transaction) []Ledger {
	var (
		rates    []decimal.Decimal
		seen     = make(map[string]bool)
		hasIGST  bool
		hasSplit bool
	)

	for _, t := range transactions {
		if t.GSTRate.IsPositive() {
			key := FormatRate(t.GSTRate)
			if !seen[key] {
				seen[key] = true
				rates = append(rates, t.GSTRate)
			}
		}
		if t.IGST.IsPositive() {
			hasIGST = true
		}
		if t.CGST.IsPositive() || t.SGST.IsPositive() {
			hasSplit = true
		}
	}

	sort.Slice(rates, func(i, j int) bool {
		return rates[i].Cmp(rates[j]) < 0
	})

	var ledgers []Ledger
	for _, rate := range rates {
		ledgers = append(ledgers, Ledger{DefaultName: SalesName(rate), Type: TypeSales, Rate: rate})

		if hasIGST {
			ledgers = append(ledgers, Ledger{DefaultName: IGSTName(rate), Type: TypeTax, Rate: rate})
		}
		if hasSplit {
			ledgers = append(ledgers,
				Ledger{DefaultName: CGSTName(rate), Type: TypeTax, Rate: halfRate(rate)},
				Ledger{DefaultName: SGSTName(rate), Type: TypeTax, Rate: halfRate(rate)},
			)
		}
	}

	return ledgers
}
