// =============================================================================
// CRM Contact Importer - Import Command
// =============================================================================
//
// This file defines the 'import' command, which drives a complete run.
//
// COMMAND USAGE:
//   importer import <file> [flags]
//
// FLAGS:
//   --dry-run           : Map every row and print it; send nothing
//   --stop-on-error     : Abort on the first failed mutation
//   --skip-health-check : Do not probe /healthz before importing
//   --yes               : Continue without asking when the CRM is unreachable
//   --report-dir        : Write a JSON and text report of the run
//   --base-url, --token : Override TWENTY_API_URL / TWENTY_API_TOKEN
//
// RUN SEQUENCE:
//   1. Load and validate configuration
//   2. Probe the CRM health endpoint (prompt when unreachable)
//   3. Read the input file
//   4. Import every row in file order
//   5. Print the summary (and write the report)
//
// =============================================================================

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/crm-contact-importer/internal/config"
	"github.com/ginjaninja78/crm-contact-importer/internal/crm"
	"github.com/ginjaninja78/crm-contact-importer/internal/importer"
	"github.com/ginjaninja78/crm-contact-importer/internal/mapping"
	"github.com/ginjaninja78/crm-contact-importer/internal/report"
)

// errDeclined is returned when the user does not continue past a failed
// health check.
var errDeclined = errors.New("import cancelled: CRM is unreachable")

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	dryRun          bool
	stopOnError     bool
	skipHealthCheck bool
	assumeYes       bool
	reportDir       string
	baseURLFlag     string
	tokenFlag       string
)

var banner = strings.Repeat("=", 60)

// =============================================================================
// IMPORT COMMAND DEFINITION
// =============================================================================

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import companies and contacts from a CSV or XLSX file",
	Long: `The import command reads every row of the input file and creates a
company in the CRM for it. When the row has an email or a phone (WhatsApp is
used when Phone is empty), a person linked to that company is created too.

A failed row is reported and skipped; the run continues with the next row
unless --stop-on-error is set. Nothing is retried and re-running the same
file creates duplicates.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Map rows and print what would be created without calling the CRM")
	importCmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "Abort the run on the first failed mutation")
	importCmd.Flags().BoolVar(&skipHealthCheck, "skip-health-check", false, "Skip the /healthz probe before importing")
	importCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Continue without prompting when the CRM is unreachable")
	importCmd.Flags().StringVar(&reportDir, "report-dir", "", "Directory for the JSON and text run report")
	importCmd.Flags().StringVar(&baseURLFlag, "base-url", "", "CRM base URL (overrides TWENTY_API_URL)")
	importCmd.Flags().StringVar(&tokenFlag, "token", "", "CRM API token (overrides TWENTY_API_TOKEN)")
}

// =============================================================================
// RUN DRIVER
// =============================================================================

func runImport(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(out, "🚀 Starting import to Twenty CRM")
	fmt.Fprintln(out, banner)

	// =========================================================================
	// STEP 1: CONFIGURATION
	// =========================================================================

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if baseURLFlag != "" {
		cfg.API.BaseURL = baseURLFlag
	}
	if tokenFlag != "" {
		cfg.API.Token = tokenFlag
	}
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingBaseURL) {
			fmt.Fprintln(out, "❌ Error: TWENTY_API_URL environment variable not set")
			fmt.Fprintf(out, "   Set it to: export TWENTY_API_URL=%s\n", config.DefaultBaseURL)
		}
		return err
	}

	log := setupLogger(cmd, cfg)
	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: HEALTH CHECK
	// =========================================================================

	if !dryRun && !skipHealthCheck {
		if err := checkHealth(ctx, cmd, client); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 3: READ INPUT
	// =========================================================================

	fmt.Fprintf(out, "\n📖 Reading CSV file: %s\n", path)
	ds, err := readDataset(path, cfg)
	if err != nil {
		reportReadError(out, path, err)
		return err
	}
	fmt.Fprintf(out, "   Found %d companies to import\n", ds.Len())

	// =========================================================================
	// STEP 4: IMPORT ROWS
	// =========================================================================

	im := importer.New(client, mapping.NewMapper(cfg.Columns, cfg.Phone.DefaultRegion),
		importer.WithOutput(out),
		importer.WithLogger(log),
		importer.WithDryRun(dryRun),
		importer.WithStopOnError(stopOnError),
	)

	result, runErr := im.Run(ctx, ds)
	if errors.Is(runErr, importer.ErrEmptyDataset) {
		fmt.Fprintln(out, "❌ No data found in CSV file")
		return fmt.Errorf("%s: %w", path, runErr)
	}

	// =========================================================================
	// STEP 5: SUMMARY
	// =========================================================================

	importer.PrintSummary(out, result, client.BaseURL())

	if reportDir != "" {
		paths, err := report.Write(reportDir, report.NewRun(path, cfg, result))
		if err != nil {
			log.Error("report.write.failed", "dir", reportDir, "error", err)
			fmt.Fprintf(out, "\n⚠️  Could not write report: %v\n", err)
		} else {
			fmt.Fprintf(out, "\n📝 Report written: %s\n", paths.JSON)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return errors.New("import interrupted")
		}
		return runErr
	}
	return nil
}

// newClient builds the CRM client from the configuration.
func newClient(cfg *config.Config, log *slog.Logger) (*crm.Client, error) {
	rl, err := cfg.ParsedRateLimit()
	if err != nil {
		return nil, err
	}

	opts := []crm.Option{
		crm.WithToken(cfg.API.Token),
		crm.WithTimeout(cfg.API.Timeout),
		crm.WithHealthTimeout(cfg.API.HealthTimeout),
		crm.WithLogger(log),
	}
	if rl.Enabled() {
		log.Debug("crm.rate_limit", "requests", rl.Requests, "interval", rl.Interval)
		opts = append(opts, crm.WithRateLimit(rl.Requests, rl.Interval))
	}
	return crm.New(cfg.API.BaseURL, opts...), nil
}

// checkHealth probes the CRM. A non-200 status only warns; an unreachable
// CRM asks the user whether to continue.
func checkHealth(ctx context.Context, cmd *cobra.Command, client *crm.Client) error {
	out := cmd.OutOrStdout()

	status, err := client.Health(ctx)
	if err == nil {
		if status != http.StatusOK {
			fmt.Fprintf(out, "⚠️  Warning: Twenty CRM at %s returned status %d\n", client.BaseURL(), status)
		}
		return nil
	}

	fmt.Fprintf(out, "⚠️  Warning: Cannot reach Twenty CRM at %s\n", client.BaseURL())
	fmt.Fprintf(out, "   Error: %v\n", err)
	fmt.Fprintln(out, "   Make sure Twenty CRM is running!")

	if assumeYes {
		fmt.Fprintln(out, "   Continuing anyway (--yes)")
		return nil
	}

	fmt.Fprint(out, "   Continue anyway? (y/n): ")
	if !confirm(cmd.InOrStdin()) {
		return errDeclined
	}
	return nil
}

// confirm reads one line and reports whether it is "y" or "Y".
func confirm(in io.Reader) bool {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
