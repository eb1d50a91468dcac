// =============================================================================
// CRM Contact Importer - Run Report
// =============================================================================
//
// This module writes an after-the-fact record of an import run:
//   - import_<timestamp>_<runid>.json  full machine-readable record
//   - import_summary_<timestamp>_<id8>.txt   human-readable summary
//
// Reports are written only when a report directory is configured. They are
// not used to resume or deduplicate later runs. The API token is never
// written.
//
// =============================================================================

package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/crm-contact-importer/internal/config"
	"github.com/ginjaninja78/crm-contact-importer/internal/importer"
)

const timestampLayout = "20060102_150405"

var divider = strings.Repeat("=", 80)

// =============================================================================
// RUN RECORD
// =============================================================================

// Settings is the configuration summary stored with a run.
type Settings struct {
	BaseURL     string `json:"baseUrl"`
	HasToken    bool   `json:"hasToken"`
	Timeout     string `json:"timeout"`
	RateLimit   string `json:"rateLimit,omitempty"`
	PhoneRegion string `json:"phoneRegion,omitempty"`
}

// Run is the full record of one import run.
type Run struct {
	ID          string                    `json:"runId"`
	SourceFile  string                    `json:"sourceFile"`
	StartTime   time.Time                 `json:"startTime"`
	EndTime     time.Time                 `json:"endTime"`
	Duration    string                    `json:"duration"`
	DryRun      bool                      `json:"dryRun"`
	Interrupted bool                      `json:"interrupted"`
	Settings    Settings                  `json:"settings"`
	Total       int                       `json:"totalRows"`
	Processed   int                       `json:"processedRows"`
	Companies   []importer.CreatedCompany `json:"companies"`
	People      []importer.CreatedPerson  `json:"people"`
	Failures    []importer.RowFailure     `json:"failures"`
}

// Paths are the files written for a run.
type Paths struct {
	JSON    string
	Summary string
}

// NewRun builds a run record with a fresh run id.
func NewRun(sourceFile string, cfg *config.Config, result *importer.Result) Run {
	run := Run{
		ID:         uuid.New().String(),
		SourceFile: sourceFile,
		Companies:  []importer.CreatedCompany{},
		People:     []importer.CreatedPerson{},
		Failures:   []importer.RowFailure{},
	}

	if cfg != nil {
		run.Settings = Settings{
			BaseURL:     cfg.API.BaseURL,
			HasToken:    cfg.API.Token != "",
			Timeout:     cfg.API.Timeout.String(),
			RateLimit:   cfg.API.RateLimit,
			PhoneRegion: cfg.Phone.DefaultRegion,
		}
	}

	if result != nil {
		run.StartTime = result.StartTime
		run.EndTime = result.EndTime
		run.Duration = result.Duration().String()
		run.DryRun = result.DryRun
		run.Interrupted = result.Interrupted
		run.Total = result.Total
		run.Processed = result.Processed
		run.Companies = append(run.Companies, result.Companies...)
		run.People = append(run.People, result.People...)
		run.Failures = append(run.Failures, result.Failures...)
	}

	return run
}

// =============================================================================
// WRITERS
// =============================================================================

// Write writes the JSON record and the text summary for a run into dir,
// creating it if needed.
//
// RETURNS:
//   - The paths of the written files.
//   - An error if the directory or either file cannot be written.
func Write(dir string, run Run) (Paths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}

	stamp := run.StartTime
	if stamp.IsZero() {
		stamp = time.Now()
	}
	ts := stamp.Format(timestampLayout)

	paths := Paths{
		JSON:    filepath.Join(dir, FileName(ts, run.ID)),
		Summary: filepath.Join(dir, SummaryFileName(ts, run.ID)),
	}

	if err := writeJSON(paths.JSON, run); err != nil {
		return Paths{}, err
	}
	if err := writeSummary(paths.Summary, run); err != nil {
		return Paths{}, err
	}
	return paths, nil
}

// FileName returns the JSON report name for a timestamp and run id.
//
// EXAMPLE:
//
//	FileName("20240115_143022", "a1b2c3d4-...")
//	// import_20240115_143022_a1b2c3d4-....json
func FileName(timestamp, runID string) string {
	return fmt.Sprintf("import_%s_%s.json", timestamp, runID)
}

// SummaryFileName returns the text summary name. Only the first eight
// characters of the run id are kept.
func SummaryFileName(timestamp, runID string) string {
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("import_summary_%s_%s.txt", timestamp, short)
}

func writeJSON(path string, run Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write run report: %w", err)
	}
	return nil
}

func writeSummary(path string, run Run) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	mode := "import"
	if run.DryRun {
		mode = "dry run"
	}

	fmt.Fprintf(w, "CRM Contact Importer - Run Summary\n%s\n\n", divider)
	fmt.Fprintf(w, "Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Mode:           %s\n"+
		"  Source File:    %s\n"+
		"  CRM:            %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Interrupted:    %t\n\n",
		run.ID,
		mode,
		run.SourceFile,
		run.Settings.BaseURL,
		run.StartTime.Format("2006-01-02 15:04:05"),
		run.EndTime.Format("2006-01-02 15:04:05"),
		run.Duration,
		run.Interrupted)

	fmt.Fprintf(w, "Statistics:\n"+
		"  Total Rows:         %d\n"+
		"  Processed Rows:     %d\n"+
		"  Companies Created:  %d\n"+
		"  People Created:     %d\n"+
		"  Failed Mutations:   %d\n\n",
		run.Total,
		run.Processed,
		len(run.Companies),
		len(run.People),
		len(run.Failures))

	if len(run.Companies) > 0 {
		fmt.Fprintf(w, "Created Companies:\n%s\n", strings.Repeat("-", 80))
		for _, c := range run.Companies {
			fmt.Fprintf(w, "  %-40s line %-6d %s\n", c.Name, c.Line, c.ID)
		}
		fmt.Fprintln(w)
	}

	if len(run.Failures) > 0 {
		fmt.Fprintf(w, "Failures:\n%s\n", strings.Repeat("-", 80))
		for _, f := range run.Failures {
			fmt.Fprintf(w, "  Line:    %d (%s)\n", f.Line, f.Company)
			fmt.Fprintf(w, "  Op:      %s [%s]\n", f.Op, f.Kind)
			fmt.Fprintf(w, "  Error:   %s\n\n", f.Message)
		}
	}

	fmt.Fprintf(w, "%s\nEnd of Summary\n", divider)

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush summary file: %w", err)
	}
	return nil
}
