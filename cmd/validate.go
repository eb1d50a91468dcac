// =============================================================================
// CRM Contact Importer - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks an input file
// without contacting the CRM.
//
// COMMAND USAGE:
//   importer validate <file>
//
// OUTPUT:
//   One line per issue, then a tally. Issues are warnings: the command
//   exits 1 only when the file is missing or has no data rows.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/crm-contact-importer/internal/importer"
	"github.com/ginjaninja78/crm-contact-importer/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check an input file offline before importing it",
	Long: `The validate command reads the input file with the same column mapping as
import and reports rows that would import poorly: missing company names,
malformed emails, unusable website domains, sizes without a number, phones
that do not parse for IMPORTER_PHONE_REGION, and rows without any contact
details. Nothing is sent to the CRM.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := setupLogger(cmd, cfg)

	fmt.Fprintf(out, "📖 Reading file: %s\n", path)
	ds, err := readDataset(path, cfg)
	if err != nil {
		reportReadError(out, path, err)
		return err
	}
	if ds.Len() == 0 {
		fmt.Fprintln(out, "❌ No data found in CSV file")
		return fmt.Errorf("%s: %w", path, importer.ErrEmptyDataset)
	}

	result := validation.New(cfg.Columns, cfg.Phone.DefaultRegion).Validate(ds)
	log.Debug("validation.finished", "rows", result.Rows, "issues", len(result.Issues))

	for _, issue := range result.Issues {
		fmt.Fprintf(out, "   ⚠️  %s\n", issue)
	}

	fmt.Fprintln(out)
	if result.IsClean() {
		fmt.Fprintf(out, "✅ %d rows checked, no issues found\n", result.Rows)
		return nil
	}
	fmt.Fprintf(out, "📋 %d rows checked, %d with issues, %d issues total\n",
		result.Rows, result.RowsWithIssues, len(result.Issues))
	return nil
}
