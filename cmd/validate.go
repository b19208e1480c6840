// =============================================================================
// Tally Bridge - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks a mapping against
// report files without converting anything. It is the human-in-the-loop step:
// edit the mapping file, validate, repeat until there are no errors.
//
// COMMAND USAGE:
//   tallybridge validate [files...] --mapping mapping.yaml
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tallybridge/internal/config"
	"tallybridge/internal/mapping"
	"tallybridge/internal/pipeline"
	"tallybridge/internal/schema"
)

var validateMappingFile string

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check a column mapping against report files",
	Long: `The validate command ingests the given report files and validates the
mapping against them. For every canonical field it reports:

  - errors   : the field is required but unmapped, or its header is claimed
               by another field (these block conversion)
  - warnings : sample values that do not look numeric or do not parse as
               dates (advisory; coercion may still salvage the data)
  - samples  : a preview of the mapped column's first values

The command exits non-zero when the mapping has errors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(
		&validateMappingFile,
		"mapping",
		"m",
		"",
		"Path to the mapping file (defaults to mapping_file from config)",
	)
}

// runValidate validates the mapping and prints the review table.
func runValidate(paths []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	mappingPath := validateMappingFile
	if mappingPath == "" {
		mappingPath = cfg.MappingFile
	}
	if mappingPath == "" {
		return fmt.Errorf("no mapping file: pass --mapping or set mapping_file in %s", cfgFile)
	}

	m, err := config.LoadMapping(mappingPath)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, &pipeline.StdLogger{Verbose: verbose})
	sources, err := p.IngestAll(paths)
	if err != nil {
		return err
	}

	result := mapping.Validate(m, sources)
	printValidationReview(m, result)

	if !result.Acceptable() {
		return fmt.Errorf("mapping has %d validation error(s)", len(result.Errors))
	}

	fmt.Println("\nMapping is valid.")
	return nil
}

// printValidationReview prints one line per canonical field with its mapped
// header, status, and sample values.
func printValidationReview(m schema.Mapping, result *mapping.Result) {
	fmt.Println("=== Mapping Review ===")

	for _, field := range schema.AllFields {
		header := m.Header(field)
		if header == "" {
			header = "(unmapped)"
		}

		status := "ok"
		switch {
		case result.Errors[field] != "":
			status = "ERROR: " + result.Errors[field]
		case result.Warnings[field] != "":
			status = "warning: " + result.Warnings[field]
		}

		fmt.Printf("  %-14s <- %-24s %s\n", field.DisplayName(), header, status)

		if samples := result.Samples[field]; len(samples) > 0 {
			fmt.Printf("  %-14s    samples: %s\n", "", strings.Join(samples, " | "))
		}
	}
}

// printValidationIssues prints only the blocking errors and the warnings.
// Used by convert when the mapping is rejected.
func printValidationIssues(result *mapping.Result) {
	fmt.Println("Mapping rejected:")
	for _, field := range schema.AllFields {
		if msg, ok := result.Errors[field]; ok {
			fmt.Printf("  ERROR   %-14s %s\n", field.DisplayName(), msg)
		}
	}
	for _, field := range schema.AllFields {
		if msg, ok := result.Warnings[field]; ok {
			fmt.Printf("  warning %-14s %s\n", field.DisplayName(), msg)
		}
	}
}
