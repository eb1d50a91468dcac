package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/crm-contact-importer/internal/config"
	"github.com/ginjaninja78/crm-contact-importer/internal/importer"
)

func sampleResult() *importer.Result {
	start := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)
	return &importer.Result{
		Total:     2,
		Processed: 2,
		StartTime: start,
		EndTime:   start.Add(3 * time.Second),
		Companies: []importer.CreatedCompany{{ID: "c-1", Name: "Acme", Line: 2}},
		People:    []importer.CreatedPerson{{ID: "p-1", CompanyID: "c-1", Name: "Jane Doe", Line: 2}},
		Failures: []importer.RowFailure{{
			Line: 3, Company: "Globex", Op: "createCompany", Kind: "graphql", Message: "duplicate",
		}},
	}
}

func TestNewRunExcludesToken(t *testing.T) {
	cfg := config.Default()
	cfg.API.Token = "super-secret"

	run := NewRun("agencies.csv", cfg, sampleResult())
	if _, err := uuid.Parse(run.ID); err != nil {
		t.Fatalf("expected uuid run id, got %q", run.ID)
	}
	if !run.Settings.HasToken {
		t.Fatalf("expected HasToken")
	}

	data, err := json.Marshal(run)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "super-secret") {
		t.Fatalf("token leaked into report: %s", data)
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	run := NewRun("agencies.csv", config.Default(), sampleResult())

	paths, err := Write(dir, run)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if filepath.Base(paths.JSON) != FileName("20240115_143022", run.ID) {
		t.Fatalf("unexpected json name %s", paths.JSON)
	}
	if filepath.Base(paths.Summary) != "import_summary_20240115_143022_"+run.ID[:8]+".txt" {
		t.Fatalf("unexpected summary name %s", paths.Summary)
	}

	raw, err := os.ReadFile(paths.JSON)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Run
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.ID != run.ID || len(decoded.Companies) != 1 || len(decoded.Failures) != 1 {
		t.Fatalf("unexpected decoded report: %+v", decoded)
	}
	if decoded.Duration != "3s" {
		t.Fatalf("unexpected duration %q", decoded.Duration)
	}

	summary, err := os.ReadFile(paths.Summary)
	if err != nil {
		t.Fatal(err)
	}
	text := string(summary)
	for _, want := range []string{
		"Run ID:         " + run.ID,
		"Companies Created:  1",
		"Failed Mutations:   1",
		"Op:      createCompany [graphql]",
		"End of Summary",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestNewRunWithoutResult(t *testing.T) {
	run := NewRun("empty.csv", nil, nil)

	data, err := json.Marshal(run)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"companies":[]`) {
		t.Fatalf("expected empty lists, got %s", data)
	}
}

func TestWriteSameSecondRunsKeepSeparateFiles(t *testing.T) {
	dir := t.TempDir()

	first, err := Write(dir, NewRun("agencies.csv", config.Default(), sampleResult()))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	second, err := Write(dir, NewRun("agencies.csv", config.Default(), sampleResult()))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if first.Summary == second.Summary || first.JSON == second.JSON {
		t.Fatalf("runs share a file: %+v %+v", first, second)
	}
	summaries, _ := filepath.Glob(filepath.Join(dir, "import_summary_20240115_143022_*.txt"))
	if len(summaries) != 2 {
		t.Fatalf("expected two summaries, got %v", summaries)
	}
}

func TestSummaryFileName(t *testing.T) {
	if got := SummaryFileName("20240115_143022", "a1b2c3d4-e5f6-7890-abcd-ef0123456789"); got != "import_summary_20240115_143022_a1b2c3d4.txt" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := SummaryFileName("20240115_143022", "abc"); got != "import_summary_20240115_143022_abc.txt" {
		t.Fatalf("unexpected name %q", got)
	}
}
