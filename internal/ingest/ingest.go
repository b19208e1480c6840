// =============================================================================
// Tally Bridge - Report Ingestion
// =============================================================================
//
// This package parses raw marketplace report files into Sources: a header row
// plus a sequence of raw string rows. Sources are immutable once created and
// are held in memory for the duration of a session.
//
// KNOWN LIMITATION:
//   The CSV splitter is deliberately naive: it splits each line on commas and
//   strips one layer of surrounding double quotes per cell. Embedded commas
//   inside quoted cells are NOT supported and will split the cell. This
//   matches the formats the supported marketplaces actually export; reports
//   that need full RFC 4180 quoting should be converted to XLSX first.
//
// =============================================================================

package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// SOURCE
// =============================================================================

// Source is one ingested report file. Headers are order-significant and not
// guaranteed unique; rows are index-aligned to headers. A file with no usable
// lines yields an empty Source (zero headers, zero rows), never an error.
type Source struct {
	// Name is the display name of the source, usually the file base name.
	Name string

	// Headers is the ordered header row.
	Headers []string

	// Rows holds the raw data rows, each index-aligned to Headers.
	Rows [][]string
}

// ColumnIndex returns the index of the first column with the given header,
// or -1 when the source does not carry that header.
func (s *Source) ColumnIndex(header string) int {
	for i, h := range s.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// Cell returns the cell at the given row and column, or "" when the row is
// shorter than the header list.
func (s *Source) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}

// =============================================================================
// CSV INGESTION
// =============================================================================

// ParseCSV splits raw report text into a Source. Lines are split on any
// line-ending convention, cells on commas; each cell is trimmed and one layer
// of surrounding double quotes is stripped. Lines that yield fewer than two
// cells are discarded, which guards against trailing blank lines. The first
// surviving line is the header row.
func ParseCSV(name, text string) *Source {
	source := &Source{Name: name}

	for _, line := range splitLines(text) {
		cells := splitCells(line)
		if len(cells) < 2 {
			continue
		}

		if source.Headers == nil {
			source.Headers = cells
			continue
		}
		source.Rows = append(source.Rows, cells)
	}

	return source
}

// splitLines splits text on \r\n, \n, or bare \r.
func splitLines(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}

// splitCells splits one line on commas and cleans each cell.
func splitCells(line string) []string {
	parts := strings.Split(line, ",")
	cells := make([]string, len(parts))
	for i, part := range parts {
		cells[i] = cleanCell(part)
	}
	return cells
}

// cleanCell trims whitespace and strips one layer of surrounding double
// quotes.
func cleanCell(cell string) string {
	cell = strings.TrimSpace(cell)
	if len(cell) >= 2 && strings.HasPrefix(cell, `"`) && strings.HasSuffix(cell, `"`) {
		cell = cell[1 : len(cell)-1]
	}
	return cell
}

// =============================================================================
// FILE DISPATCH
// =============================================================================

// ReadFile ingests a report file, dispatching on its extension. CSV and TXT
// files go through the line splitter; XLSX files go through the spreadsheet
// reader.
func ReadFile(path string) (*Source, error) {
	name := filepath.Base(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path)
	case ".csv", ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return ParseCSV(name, string(data)), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", name)
	}
}

// =============================================================================
// HEADER UNIVERSE
// =============================================================================

// HeaderUniverse returns the duplicate-free union of all headers across the
// given sources, preserving first-seen order. It performs no validation; the
// result only populates mapping choices.
func HeaderUniverse(sources []*Source) []string {
	seen := make(map[string]bool)
	var universe []string

	for _, source := range sources {
		for _, header := range source.Headers {
			if !seen[header] {
				seen[header] = true
				universe = append(universe, header)
			}
		}
	}

	return universe
}
