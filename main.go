// =============================================================================
// Tally Bridge - Main Entry Point
// =============================================================================
//
// Tally Bridge converts e-commerce marketplace sales reports (CSV or XLSX
// exports with marketplace-specific column names) into a single Tally
// voucher-import XML document.
//
// USAGE:
//   tallybridge convert   - Convert report files into one voucher XML document
//   tallybridge validate  - Check a column mapping against report files
//   tallybridge headers   - List every column header seen across report files
//   tallybridge version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Core pipeline (ingest, mapping, builder, ledger, export)
//   - pkg/       : Shared utilities
//
// =============================================================================

package main

import (
	"tallybridge/cmd"
)

func main() {
	cmd.Execute()
}
