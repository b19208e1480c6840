// =============================================================================
// Tally Bridge - Suggest Command
// =============================================================================
//
// This file defines the 'suggest' command, which drafts a mapping file from
// the headers of the given report files. When the configuration names a
// remote suggestion endpoint it is tried first; any failure degrades to the
// built-in heuristic matcher, and the heuristic leaves unknown fields blank
// for the user to fill in. The draft carries no special trust: it goes
// through the same validation as a hand-written mapping.
//
// COMMAND USAGE:
//   tallybridge suggest [files...] --out mapping.yaml
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tallybridge/internal/config"
	"tallybridge/internal/ingest"
	"tallybridge/internal/mapping"
	"tallybridge/internal/pipeline"
	"tallybridge/internal/schema"
)

var suggestOutputPath string

// suggestCmd represents the 'suggest' command.
var suggestCmd = &cobra.Command{
	Use:   "suggest [files...]",
	Short: "Draft a mapping file from report headers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSuggest(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().StringVarP(
		&suggestOutputPath,
		"out",
		"o",
		"mapping.yaml",
		"Path to write the drafted mapping file",
	)
}

func runSuggest(ctx context.Context, paths []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger := &pipeline.StdLogger{Verbose: verbose}
	p := pipeline.New(cfg, logger)

	sources, err := p.IngestAll(paths)
	if err != nil {
		return err
	}
	universe := ingest.HeaderUniverse(sources)

	m := suggestMapping(ctx, cfg, logger, universe)

	if err := config.SaveMapping(suggestOutputPath, m); err != nil {
		return err
	}

	mapped := 0
	for _, field := range schema.AllFields {
		if m.IsMapped(field) {
			mapped++
		}
	}
	fmt.Printf("Drafted %s with %d of %d fields mapped.\n", suggestOutputPath, mapped, len(schema.AllFields))
	fmt.Println("Review the file, fill in the blanks, then run 'tallybridge validate'.")
	return nil
}

// suggestMapping tries the configured remote suggester first and degrades to
// the heuristic matcher on any failure. The result is always a total mapping.
func suggestMapping(ctx context.Context, cfg *config.Config, logger pipeline.Logger, headers []string) schema.Mapping {
	if cfg.Suggestion.Endpoint != "" {
		remote := &mapping.HTTPSuggester{
			Endpoint: cfg.Suggestion.Endpoint,
			APIKey:   os.Getenv(cfg.Suggestion.APIKeyEnv),
			Timeout:  time.Duration(cfg.Suggestion.TimeoutSeconds) * time.Second,
		}

		m, err := mapping.SuggestOrBlank(ctx, remote, headers)
		if err == nil {
			return m
		}
		logger.Warn("remote suggestion failed, using heuristic matcher: %v", err)
	}

	m, _ := mapping.SuggestOrBlank(ctx, mapping.HeuristicSuggester{}, headers)
	return m
}
