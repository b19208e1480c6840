// =============================================================================
// Tally Bridge - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which runs the whole conversion
// pipeline over one or more report files and writes one voucher XML document.
//
// COMMAND USAGE:
//   tallybridge convert [files...] [flags]
//
// FLAGS:
//   --mapping, -m : Path to the mapping file (falls back to config)
//   --out, -o     : Explicit output path (overrides configured naming)
//   --dry-run     : Run the pipeline without writing the output file
//   --archive     : Move the report files to the input archive on success
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tallybridge/internal/config"
	"tallybridge/internal/ledger"
	"tallybridge/internal/pipeline"
	"tallybridge/internal/schema"
	"tallybridge/pkg/utils"
)

var (
	convertMappingFile string
	convertOutputPath  string
	convertDryRun      bool
	convertArchive     bool
)

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert report files into one voucher XML document",
	Long: `The convert command ingests the given report files, validates the mapping
against them, builds one canonical transaction per data row, and writes a
single Tally voucher-import XML document covering all files.

The run is all-or-nothing: if the mapping has validation errors, they are
printed and no output is written. Warnings are printed but never block.

After a successful run the derived ledger guide is printed; create any
missing ledgers in Tally before importing the document.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(args)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(
		&convertMappingFile,
		"mapping",
		"m",
		"",
		"Path to the mapping file (defaults to mapping_file from config)",
	)

	convertCmd.Flags().StringVarP(
		&convertOutputPath,
		"out",
		"o",
		"",
		"Output path for the voucher document (overrides configured naming)",
	)

	convertCmd.Flags().BoolVar(
		&convertDryRun,
		"dry-run",
		false,
		"Run the pipeline without writing the output file",
	)

	convertCmd.Flags().BoolVar(
		&convertArchive,
		"archive",
		false,
		"Move report files to the input archive after a successful run",
	)
}

// runConvert orchestrates one conversion run.
func runConvert(paths []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	m, err := loadMappingOrDefault(cfg)
	if err != nil {
		return err
	}

	logger := &pipeline.StdLogger{Verbose: verbose}
	p := pipeline.New(cfg, logger)

	sources, err := p.IngestAll(paths)
	if err != nil {
		return err
	}

	// Resolve the output destination before running so a bad path fails fast.
	var (
		out        io.Writer
		outputPath string
		closeOut   func() error
	)
	switch {
	case convertDryRun:
		out = io.Discard
	case convertOutputPath != "":
		f, err := os.Create(convertOutputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		out, outputPath, closeOut = f, convertOutputPath, f.Close
	default:
		fm := utils.NewFileManager(cfg.OutputDir, cfg.InputArchiveDir)
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
		f, path, err := fm.CreateOutput(cfg.OutputNameFormat)
		if err != nil {
			return err
		}
		out, outputPath, closeOut = f, path, f.Close
	}

	result := p.Run(sources, m, out)

	if closeOut != nil {
		if err := closeOut(); err != nil {
			return fmt.Errorf("failed to finish output file: %w", err)
		}
	}

	if result.Error != nil {
		if result.Error == pipeline.ErrMappingRejected {
			printValidationIssues(result.Validation)
			if outputPath != "" {
				os.Remove(outputPath)
			}
		}
		return result.Error
	}

	printLedgerGuide(cfg, result)

	fmt.Println("\n=== Conversion Complete ===")
	fmt.Printf("Sources:       %d\n", result.Stats.SourcesIngested)
	fmt.Printf("Rows:          %d\n", result.Stats.RowsIngested)
	fmt.Printf("Transactions:  %d\n", result.Stats.TransactionsBuilt)
	fmt.Printf("Warnings:      %d\n", result.Stats.Warnings)
	fmt.Printf("Time elapsed:  %s\n", result.Stats.ProcessingTime)
	if convertDryRun {
		fmt.Println("Dry run: no output file written.")
	} else {
		fmt.Printf("Output:        %s\n", outputPath)
	}

	if convertArchive && !convertDryRun {
		fm := utils.NewFileManager(cfg.OutputDir, cfg.InputArchiveDir)
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
		for _, path := range paths {
			archived, err := fm.ArchiveInput(path)
			if err != nil {
				logger.Warn("%v", err)
				continue
			}
			logger.Info("archived %s -> %s", path, archived)
		}
	}

	return nil
}

// loadMappingOrDefault loads the mapping from the --mapping flag or the
// configured default file.
func loadMappingOrDefault(cfg *config.Config) (schema.Mapping, error) {
	path := convertMappingFile
	if path == "" {
		path = cfg.MappingFile
	}
	if path == "" {
		return nil, fmt.Errorf("no mapping file: pass --mapping or set mapping_file in %s", cfgFile)
	}
	return config.LoadMapping(path)
}

// printLedgerGuide lists the derived ledgers with their effective names so
// the user can create missing ledgers in Tally before importing.
func printLedgerGuide(cfg *config.Config, result pipeline.Result) {
	if len(result.Ledgers) == 0 {
		return
	}

	overrides := ledger.Overrides(cfg.LedgerOverrides)

	fmt.Println("\n=== Ledger Guide ===")
	for _, l := range result.Ledgers {
		effective := overrides.Resolve(l.DefaultName)
		if effective != l.DefaultName {
			fmt.Printf("  %-12s %s (renamed to %q)\n", l.Type, l.DefaultName, effective)
		} else {
			fmt.Printf("  %-12s %s\n", l.Type, l.DefaultName)
		}
	}
}
