// =============================================================================
// CRM Contact Importer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (importer)
//   ├── importCmd   (importer import <file>)
//   ├── validateCmd (importer validate <file>)
//   └── versionCmd  (importer version)
//
// CONFIGURATION:
//   The root command owns the flags shared by every subcommand:
//   --config, --env-file and --verbose. Loading happens in loadConfig so
//   each command sees the same layering.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/crm-contact-importer/internal/config"
	"github.com/ginjaninja78/crm-contact-importer/internal/csvparser"
	"github.com/ginjaninja78/crm-contact-importer/internal/logger"
	"github.com/ginjaninja78/crm-contact-importer/internal/types"
	"github.com/ginjaninja78/crm-contact-importer/internal/xlsxparser"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the YAML configuration file.
var cfgFile string

// envFile holds the path to the .env file.
var envFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "importer",
	Short: "CRM Contact Importer - Load business contacts from CSV into Twenty CRM",
	Long: `CRM Contact Importer reads a CSV (or XLSX) file of business contacts and
creates a company, and when contact details are present a linked person, in
Twenty CRM through its GraphQL API.

Configuration comes from importer.yaml, a .env file and the environment:
  TWENTY_API_URL       CRM base URL (default http://localhost:8080)
  TWENTY_API_TOKEN     API token sent as a bearer token (optional)
  IMPORTER_TIMEOUT     per-request timeout (default 10s)
  IMPORTER_RATE_LIMIT  request pacing, e.g. 5/sec (default unlimited)

Example Usage:
  importer import data/agencies.csv             # Import every row
  importer import data/agencies.csv --dry-run   # Show what would be created
  importer validate data/agencies.csv           # Check the file offline`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigFile,
		"Path to the YAML configuration file (skipped when the default is absent)",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		config.DefaultEnvFile,
		"Path to a .env file loaded into the environment when present",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging on stderr",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig loads the .env file and the layered configuration. The YAML
// file is only required when --config names something other than the
// default.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	required := cfgFile != "" && cfgFile != config.DefaultConfigFile
	cfg, err := config.Load(cfgFile, required)
	if err != nil {
		return nil, err
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// setupLogger builds the diagnostics logger on the command's stderr.
func setupLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logger.Setup(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
}

// readDataset selects the reader by file extension.
func readDataset(path string, cfg *config.Config) (*types.Dataset, error) {
	if xlsxparser.IsWorkbook(path) {
		return xlsxparser.Parse(path, cfg.CSV.Sheet)
	}
	return csvparser.Parse(path, cfg.CSV)
}

// reportReadError prints the console message for an unreadable input file.
func reportReadError(out io.Writer, path string, err error) {
	if errors.Is(err, csvparser.ErrFileNotFound) {
		fmt.Fprintf(out, "❌ CSV file not found: %s\n", path)
		return
	}
	fmt.Fprintf(out, "❌ Failed to read %s: %v\n", path, err)
}
