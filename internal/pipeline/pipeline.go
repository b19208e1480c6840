// =============================================================================
// Tally Bridge - Conversion Pipeline
// =============================================================================
//
// This module orchestrates the conversion run: ingest the report files,
// validate the mapping against them, build the canonical transactions,
// derive the ledger guide, and export the voucher document.
//
// The pipeline itself is synchronous and holds no shared mutable state; the
// only concurrency is file ingestion, where each file is parsed independently
// and results are merged back in input order so the output is deterministic.
//
// =============================================================================

package pipeline

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"tallybridge/internal/builder"
	"tallybridge/internal/config"
	"tallybridge/internal/export"
	"tallybridge/internal/ingest"
	"tallybridge/internal/ledger"
	"tallybridge/internal/mapping"
	"tallybridge/internal/schema"
)

// ErrMappingRejected is returned when the mapping fails validation; the
// Result's Validation field holds the per-field errors.
var ErrMappingRejected = errors.New("mapping has validation errors")

// =============================================================================
// LOGGING
// =============================================================================

// Logger is the logging interface the pipeline reports through.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// StdLogger prints to stdout. Debug output is gated on Verbose.
type StdLogger struct {
	Verbose bool
}

func (l *StdLogger) Debug(msg string, args ...interface{}) {
	if l.Verbose {
		fmt.Printf("[DEBUG] "+msg+"\n", args...)
	}
}

func (l *StdLogger) Info(msg string, args ...interface{}) {
	fmt.Printf("[INFO] "+msg+"\n", args...)
}

func (l *StdLogger) Warn(msg string, args ...interface{}) {
	fmt.Printf("[WARN] "+msg+"\n", args...)
}

func (l *StdLogger) Error(msg string, args ...interface{}) {
	fmt.Printf("[ERROR] "+msg+"\n", args...)
}

// =============================================================================
// RESULT
// =============================================================================

// Stats contains counts for the summary report.
type Stats struct {
	SourcesIngested   int
	RowsIngested      int
	TransactionsBuilt int
	LedgersDerived    int
	Warnings          int
	ProcessingTime    time.Duration
}

// Result is the outcome of one conversion run.
type Result struct {
	// Success is true when the voucher document was written.
	Success bool

	// Error is set when the run failed. A rejected mapping surfaces as
	// ErrMappingRejected with Validation populated.
	Error error

	// Validation is the mapping validation outcome, set on every run.
	Validation *mapping.Result

	// Ledgers is the derived ledger guide, set on successful runs.
	Ledgers []ledger.Ledger

	// Stats contains processing statistics.
	Stats Stats
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline runs conversions with a fixed configuration.
type Pipeline struct {
	cfg    *config.Config
	logger Logger
}

// New creates a Pipeline. A nil logger falls back to a non-verbose StdLogger.
func New(cfg *config.Config, logger Logger) *Pipeline {
	if logger == nil {
		logger = &StdLogger{}
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// IngestAll parses every report file, one goroutine per file, and returns the
// sources in the order the paths were given. The first read failure fails the
// whole ingestion; an empty or malformed file is not a failure, it just
// contributes no rows.
func (p *Pipeline) IngestAll(paths []string) ([]*ingest.Source, error) {
	sources := make([]*ingest.Source, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sources[i], errs[i] = ingest.ReadFile(path)
		}(i, path)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("ingestion of %s failed: %w", paths[i], err)
		}
	}

	for _, source := range sources {
		if len(source.Rows) == 0 {
			p.logger.Warn("%s contains no data rows", source.Name)
		}
	}

	return sources, nil
}

// Run validates the mapping, builds the transactions, derives the ledger
// guide, and streams the voucher document to w. Nothing is written when the
// mapping is rejected.
func (p *Pipeline) Run(sources []*ingest.Source, m schema.Mapping, w io.Writer) Result {
	startTime := time.Now()

	result := Result{
		Stats: Stats{SourcesIngested: len(sources)},
	}
	for _, source := range sources {
		result.Stats.RowsIngested += len(source.Rows)
	}

	// Step 1: validate the mapping.
	result.Validation = mapping.Validate(m, sources)
	result.Stats.Warnings = len(result.Validation.Warnings)

	for field, warning := range result.Validation.Warnings {
		p.logger.Warn("%s: %s", field.DisplayName(), warning)
	}

	if !result.Validation.Acceptable() {
		result.Error = ErrMappingRejected
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	// Step 2: build the canonical transactions.
	transactions := builder.Build(m, sources)
	result.Stats.TransactionsBuilt = len(transactions)
	p.logger.Debug("built %d transaction(s) from %d source(s)", len(transactions), len(sources))

	// Step 3: derive the ledger guide.
	result.Ledgers = ledger.Resolve(transactions)
	result.Stats.LedgersDerived = len(result.Ledgers)

	// Step 4: export the voucher document.
	exporter := &export.Exporter{
		Company:   p.cfg.CompanyName,
		Overrides: ledger.Overrides(p.cfg.LedgerOverrides),
	}
	if err := exporter.Write(w, transactions); err != nil {
		result.Error = fmt.Errorf("failed to write voucher document: %w", err)
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}
