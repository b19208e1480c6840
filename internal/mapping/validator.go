// =============================================================================
// Tally Bridge - Mapping Validation
// =============================================================================
//
// This package decides whether a column mapping is fit to build transactions
// from. Validation is a pure function of the mapping and the ingested
// sources; callers recompute it after every mutation of either input.
//
// VALIDATION STRATEGY:
//   Issues are collected, not thrown, and are keyed by canonical field:
//   - errors block transaction building (missing required field, one header
//     claimed by two fields)
//   - warnings are advisory only (sample values that do not look numeric or
//     do not parse as dates); coercion may still salvage the data
//   - samples give the user a preview of what each mapped column holds
//
// =============================================================================

package mapping

import (
	"fmt"
	"strings"

	"tallybridge/internal/ingest"
	"tallybridge/internal/schema"
)

// sampleLimit is the number of raw values previewed per mapped field.
const sampleLimit = 3

// Result holds the outcome of validating one mapping against the current
// sources. It is derived state: recompute it whenever the mapping or the
// source set changes.
type Result struct {
	// Errors holds hard-blocking issues keyed by field.
	Errors map[schema.Field]string

	// Warnings holds advisory issues keyed by field.
	Warnings map[schema.Field]string

	// Samples holds up to three raw values per mapped field, drawn from the
	// first source whose header list contains the mapped header.
	Samples map[schema.Field][]string
}

// Acceptable reports whether the mapping may be frozen and handed to the
// transaction builder. Warnings never block.
func (r *Result) Acceptable() bool {
	return len(r.Errors) == 0
}

// Validate checks the mapping against the ingested sources and returns the
// per-field errors, warnings, and preview samples.
func Validate(m schema.Mapping, sources []*ingest.Source) *Result {
	result := &Result{
		Errors:   make(map[schema.Field]string),
		Warnings: make(map[schema.Field]string),
		Samples:  make(map[schema.Field][]string),
	}

	for _, field := range schema.AllFields {
		header := m.Header(field)

		if header == "" {
			if field.IsRequired() {
				result.Errors[field] = "required field is not mapped"
			}
			continue
		}

		samples := sampleValues(sources, header)
		if len(samples) > 0 {
			result.Samples[field] = samples
		}

		switch {
		case field.IsNumeric():
			if bad, ok := firstNonNumeric(samples); ok {
				result.Warnings[field] = fmt.Sprintf("sample value %q does not look numeric", bad)
			}
		case field.IsDate():
			if bad, ok := firstNonDate(samples); ok {
				result.Warnings[field] = fmt.Sprintf("sample value %q does not parse as a date", bad)
			}
		}
	}

	checkDuplicateHeaders(m, result)

	return result
}

// sampleValues collects up to sampleLimit raw cell values for the header from
// the first source that carries it. Sources without the header are skipped.
func sampleValues(sources []*ingest.Source, header string) []string {
	for _, source := range sources {
		col := source.ColumnIndex(header)
		if col < 0 {
			continue
		}

		var samples []string
		for row := 0; row < len(source.Rows) && len(samples) < sampleLimit; row++ {
			samples = append(samples, source.Cell(row, col))
		}
		return samples
	}
	return nil
}

// firstNonNumeric returns the first non-blank sample the numeric coercion
// rejects. Blank values pass trivially.
func firstNonNumeric(samples []string) (string, bool) {
	for _, sample := range samples {
		if strings.TrimSpace(sample) == "" {
			continue
		}
		if _, ok := schema.CoerceNumeric(sample); !ok {
			return sample, true
		}
	}
	return "", false
}

// firstNonDate returns the first non-blank sample that fails date parsing.
func firstNonDate(samples []string) (string, bool) {
	for _, sample := range samples {
		if strings.TrimSpace(sample) == "" {
			continue
		}
		if _, ok := schema.ParseDate(sample); !ok {
			return sample, true
		}
	}
	return "", false
}

// checkDuplicateHeaders enforces the uniqueness invariant: every non-empty
// mapped header may be claimed by at most one field. Every field sharing a
// header gets an error naming the fields it collides with.
func checkDuplicateHeaders(m schema.Mapping, result *Result) {
	byHeader := make(map[string][]schema.Field)
	for _, field := range schema.AllFields {
		if header := m.Header(field); header != "" {
			byHeader[header] = append(byHeader[header], field)
		}
	}

	for header, fields := range byHeader {
		if len(fields) < 2 {
			continue
		}

		for _, field := range fields {
			var others []string
			for _, other := range fields {
				if other != field {
					others = append(others, other.DisplayName())
				}
			}
			result.Errors[field] = fmt.Sprintf("header %q is also mapped to %s", header, strings.Join(others, ", "))
		}
	}
}
