// =============================================================================
// Tally Bridge - Headers Command
// =============================================================================
//
// This file defines the 'headers' command, which lists every distinct column
// header seen across the given report files, in first-seen order. The list is
// what a mapping file's values must be drawn from.
//
// COMMAND USAGE:
//   tallybridge headers [files...]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tallybridge/internal/config"
	"tallybridge/internal/ingest"
	"tallybridge/internal/pipeline"
)

// headersCmd represents the 'headers' command.
var headersCmd = &cobra.Command{
	Use:   "headers [files...]",
	Short: "List every column header seen across report files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHeaders(args)
	},
}

func init() {
	rootCmd.AddCommand(headersCmd)
}

func runHeaders(paths []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, &pipeline.StdLogger{Verbose: verbose})
	sources, err := p.IngestAll(paths)
	if err != nil {
		return err
	}

	universe := ingest.HeaderUniverse(sources)
	if len(universe) == 0 {
		fmt.Println("No headers found.")
		return nil
	}

	for _, header := range universe {
		fmt.Println(header)
	}
	return nil
}
