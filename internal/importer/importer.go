// =============================================================================
// CRM Contact Importer - Import Pipeline
// =============================================================================
//
// This module contains the core import logic. It walks the dataset once, in
// file order, and issues at most two mutations per row.
//
// IMPORT PIPELINE (per row):
//   1. Print the progress line
//   2. Map the row to a company payload and create the company
//   3. If the company was created and the row has an email or phone, map
//      and create the person linked to it
//   4. Record created records and per-row failures
//
// FAILURE POLICY:
//   A failed company skips the row's person. Failures are collected and the
//   run continues unless StopOnError is set. Nothing is retried.
//
// =============================================================================

package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ginjaninja78/crm-contact-importer/internal/crm"
	"github.com/ginjaninja78/crm-contact-importer/internal/logger"
	"github.com/ginjaninja78/crm-contact-importer/internal/mapping"
	"github.com/ginjaninja78/crm-contact-importer/internal/types"
)

var (
	// ErrEmptyDataset is returned when the input has no data rows.
	ErrEmptyDataset = errors.New("no data found in input file")

	// ErrAborted is returned when StopOnError ends the run early.
	ErrAborted = errors.New("import aborted after row failure")
)

// Client is the subset of the CRM client the pipeline needs.
type Client interface {
	CreateCompany(ctx context.Context, input mapping.CompanyInput) (crm.Record, error)
	CreatePerson(ctx context.Context, input mapping.PersonInput) (crm.Record, error)
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// CreatedCompany is a company created during the run.
type CreatedCompany struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Line int    `json:"line"`
}

// CreatedPerson is a person created during the run.
type CreatedPerson struct {
	ID        string `json:"id"`
	CompanyID string `json:"companyId"`
	Name      string `json:"name"`
	Line      int    `json:"line"`
}

// RowFailure records a mutation that failed for a row.
type RowFailure struct {
	Line    int    `json:"line"`
	Company string `json:"company"`
	Op      string `json:"op"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Result represents the outcome of a run.
type Result struct {
	// Total is the number of data rows in the dataset.
	Total int

	// Processed is the number of rows that were started.
	Processed int

	Companies []CreatedCompany
	People    []CreatedPerson
	Failures  []RowFailure

	// DryRun is true when no mutations were issued.
	DryRun bool

	// Interrupted is true when the context was cancelled mid-run.
	Interrupted bool

	StartTime time.Time
	EndTime   time.Time
}

// Duration returns the wall time of the run.
func (r *Result) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// =============================================================================
// IMPORTER STRUCTURE
// =============================================================================

// Importer runs the per-row pipeline against a Client.
type Importer struct {
	client      Client
	mapper      *mapping.Mapper
	out         io.Writer
	logger      *slog.Logger
	dryRun      bool
	stopOnError bool
}

// Option configures an Importer.
type Option func(*Importer)

// WithOutput sets where progress lines are printed.
func WithOutput(w io.Writer) Option {
	return func(im *Importer) {
		if w != nil {
			im.out = w
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) {
		if logger != nil {
			im.logger = logger
		}
	}
}

// WithDryRun maps rows and prints what would be created without calling the
// client.
func WithDryRun(dryRun bool) Option {
	return func(im *Importer) { im.dryRun = dryRun }
}

// WithStopOnError makes the first row failure end the run.
func WithStopOnError(stop bool) Option {
	return func(im *Importer) { im.stopOnError = stop }
}

// New creates an Importer.
//
// PARAMETERS:
//   - client: The CRM client. May be nil for dry runs.
//   - mapper: Maps rows to payloads.
//   - opts: Output, logging and failure policy options.
func New(client Client, mapper *mapping.Mapper, opts ...Option) *Importer {
	im := &Importer{
		client: client,
		mapper: mapper,
		out:    io.Discard,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run imports every row of the dataset.
//
// RETURNS:
//   - The result so far. It is never nil, even when an error is returned,
//     so callers can always print a summary.
//   - ErrEmptyDataset when there are no rows (no calls are made).
//   - ErrAborted (wrapped) when StopOnError ended the run.
//   - The context error when the run was interrupted.
func (im *Importer) Run(ctx context.Context, ds *types.Dataset) (*Result, error) {
	result := &Result{
		Total:     ds.Len(),
		DryRun:    im.dryRun,
		StartTime: time.Now(),
	}
	defer func() { result.EndTime = time.Now() }()

	if result.Total == 0 {
		return result, ErrEmptyDataset
	}
	if im.client == nil && !im.dryRun {
		return result, errors.New("importer: no CRM client configured")
	}

	for idx, row := range ds.Rows {
		if err := ctx.Err(); err != nil {
			result.Interrupted = true
			return result, err
		}
		result.Processed++

		label := im.mapper.CompanyName(row)
		if label == "" {
			label = fmt.Sprintf("Company %d", idx+1)
		}
		fmt.Fprintf(im.out, "\n[%d/%d] Processing: %s\n", idx+1, result.Total, label)

		if im.dryRun {
			im.preview(row)
			continue
		}

		if err := im.importRow(ctx, row, result); err != nil {
			if ctx.Err() != nil {
				result.Interrupted = true
				return result, ctx.Err()
			}
			if im.stopOnError {
				return result, fmt.Errorf("%w: line %d: %v", ErrAborted, row.Line, err)
			}
		}
	}

	return result, nil
}

// importRow creates the row's company and, when possible, its person. The
// returned error is the first mutation failure, already recorded in result.
func (im *Importer) importRow(ctx context.Context, row types.Row, result *Result) error {
	company := im.mapper.Company(row)

	rec, err := im.client.CreateCompany(ctx, company)
	if err != nil {
		fmt.Fprintf(im.out, "   ❌ Error creating company %s: %v\n", company.Name, err)
		fmt.Fprintln(im.out, "   ⚠️  Skipped creating person - company creation failed")
		im.fail(result, row, company.Name, "createCompany", err)
		return err
	}

	fmt.Fprintf(im.out, "   ✅ Created company: %s (ID: %s)\n", company.Name, rec.ID)
	im.logger.Debug("importer.company.created", "line", row.Line, "id", rec.ID, "duration", rec.Duration)
	result.Companies = append(result.Companies, CreatedCompany{ID: rec.ID, Name: company.Name, Line: row.Line})

	person, ok := im.mapper.Person(row, rec.ID)
	if !ok {
		im.logger.Debug("importer.person.skipped", "line", row.Line, "reason", "no email or phone")
		return nil
	}

	prec, err := im.client.CreatePerson(ctx, person)
	if err != nil {
		fmt.Fprintf(im.out, "   ❌ Error creating person %s: %v\n", person.Name, err)
		im.fail(result, row, company.Name, "createPerson", err)
		return err
	}

	fmt.Fprintf(im.out, "   ✅ Created person: %s (ID: %s)\n", person.Name, prec.ID)
	im.logger.Debug("importer.person.created", "line", row.Line, "id", prec.ID, "duration", prec.Duration)
	result.People = append(result.People, CreatedPerson{
		ID:        prec.ID,
		CompanyID: rec.ID,
		Name:      person.Name,
		Line:      row.Line,
	})
	return nil
}

func (im *Importer) fail(result *Result, row types.Row, company, op string, err error) {
	kind := "unknown"
	var ce *crm.Error
	if errors.As(err, &ce) {
		kind = string(ce.Kind)
	}

	result.Failures = append(result.Failures, RowFailure{
		Line:    row.Line,
		Company: company,
		Op:      op,
		Kind:    kind,
		Message: err.Error(),
	})
	im.logger.Warn("importer.row.failed", "line", row.Line, "op", op, "kind", kind, "error", err)
}

// preview prints the payloads a row would produce.
func (im *Importer) preview(row types.Row) {
	company := im.mapper.Company(row)

	domain, employees := "-", "-"
	if company.DomainName != nil {
		domain = *company.DomainName
	}
	if company.Employees != nil {
		employees = fmt.Sprintf("%d", *company.Employees)
	}
	fmt.Fprintf(im.out, "   Would create company: %s (domain: %s, employees: %s, industry: %s)\n",
		company.Name, domain, employees, orDash(company.Industry))

	person, ok := im.mapper.Person(row, "")
	if !ok {
		fmt.Fprintln(im.out, "   No email or phone - no person would be created")
		return
	}
	fmt.Fprintf(im.out, "   Would create person: %s (email: %s, phone: %s)\n",
		person.Name, orDash(person.Email), orDash(person.Phone))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
