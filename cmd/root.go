// =============================================================================
// Tally Bridge - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI.
//
// COBRA CLI STRUCTURE:
//   rootCmd (tallybridge)
//   ├── convertCmd  (tallybridge convert)
//   ├── validateCmd (tallybridge validate)
//   ├── suggestCmd  (tallybridge suggest)
//   ├── headersCmd  (tallybridge headers)
//   └── versionCmd  (tallybridge version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cfgFile holds the path to the application configuration file.
// Overridden with the --config flag.
var cfgFile string

// verbose enables debug logging when set.
var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tallybridge",
	Short: "Convert marketplace sales reports into Tally voucher XML",
	Long: `Tally Bridge converts e-commerce marketplace sales reports (CSV or XLSX
exports with marketplace-specific column names) into a single Tally
voucher-import XML document.

The workflow is file-driven: list the column headers your reports use,
produce a mapping file binding them to the canonical sales fields, validate
the mapping against the reports, then convert.

Example Usage:
  tallybridge headers amazon.csv flipkart.csv          # See all column headers
  tallybridge suggest amazon.csv -o mapping.yaml       # Draft a mapping file
  tallybridge validate amazon.csv -m mapping.yaml      # Check the mapping
  tallybridge convert amazon.csv flipkart.csv -m mapping.yaml`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the application configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	// A .env file may carry the suggestion service API key. Absence is fine.
	_ = godotenv.Load()
}
