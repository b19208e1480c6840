// =============================================================================
// Tally Bridge - XLSX Ingestion
// =============================================================================
//
// Several marketplaces export XLSX rather than CSV. This reader produces the
// same Source shape as the CSV splitter: rows come from the first sheet, each
// cell is trimmed, and rows with fewer than two cells are discarded so the
// two paths agree on what counts as a usable line.
//
// =============================================================================

package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX ingests the first sheet of an XLSX workbook as a Source. A
// workbook with no usable rows yields an empty Source.
func ReadXLSX(path string) (*Source, error) {
	name := filepath.Base(path)

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return &Source{Name: name}, nil
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q in %s: %w", sheetName, name, err)
	}

	source := &Source{Name: name}

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.TrimSpace(cell)
		}
		if usableCellCount(cells) < 2 {
			continue
		}

		if source.Headers == nil {
			source.Headers = cells
			continue
		}
		source.Rows = append(source.Rows, cells)
	}

	return source, nil
}

// usableCellCount counts cells up to the last non-empty one. excelize pads
// short rows differently than the CSV splitter does, so trailing empties are
// not counted when deciding whether a row is usable.
func usableCellCount(cells []string) int {
	last := 0
	for i, cell := range cells {
		if cell != "" {
			last = i + 1
		}
	}
	return last
}
