// =============================================================================
// CRM Contact Importer - Validation Engine
// =============================================================================
//
// This module checks an input file offline, before anything is sent to the
// CRM. Each row is inspected with the same column mapping the importer uses:
//   - Missing company name (the company would be "Unknown Company")
//   - Malformed email address
//   - Website whose domain does not survive IDNA lookup conversion
//   - Size text with no digits (employees would be null)
//   - Phone that does not parse for the configured region
//   - No email and no phone (no person would be created)
//
// ERROR HANDLING:
//   - Issues are collected, never returned as errors
//   - Every issue carries the source line, column and value
//   - All issues are warnings; the importer would still run the row
//
// =============================================================================

package validation

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"github.com/ginjaninja78/crm-contact-importer/internal/config"
	"github.com/ginjaninja78/crm-contact-importer/internal/mapping"
	"github.com/ginjaninja78/crm-contact-importer/internal/types"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	digitPattern = regexp.MustCompile(`[0-9]`)
	idnaProfile  = idna.Lookup
)

// Rule names reported in issues.
const (
	RuleMissingCompany = "missing_company"
	RuleEmail          = "email_format"
	RuleDomain         = "domain"
	RuleSize           = "size_no_digits"
	RulePhone          = "phone"
	RuleNoContact      = "no_contact"
)

// =============================================================================
// VALIDATION ISSUE TYPES
// =============================================================================

// Issue represents a single validation finding.
type Issue struct {
	// Line is the source line of the row.
	Line int `json:"line"`

	// Field is the column that triggered the issue.
	Field string `json:"field"`

	// Value is the offending value.
	Value string `json:"value"`

	// Rule is the rule that was violated.
	Rule string `json:"rule"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Value == "" {
		return fmt.Sprintf("line %d, %s: %s", i.Line, i.Field, i.Message)
	}
	return fmt.Sprintf("line %d, %s: %s (value: '%s')", i.Line, i.Field, i.Message, i.Value)
}

// Result contains the results of validating a dataset.
type Result struct {
	// Rows is the number of rows checked.
	Rows int

	// RowsWithIssues is the number of rows with at least one issue.
	RowsWithIssues int

	// Issues lists every issue in file order.
	Issues []Issue
}

// IsClean reports whether no issues were found.
func (r Result) IsClean() bool { return len(r.Issues) == 0 }

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks rows against the importer's mapping rules.
type Validator struct {
	columns     config.ColumnConfig
	mapper      *mapping.Mapper
	phoneRegion string
}

// New creates a Validator. Phone checks run only when phoneRegion is set,
// matching when the importer normalises phones.
func New(columns config.ColumnConfig, phoneRegion string) *Validator {
	region := strings.ToUpper(strings.TrimSpace(phoneRegion))
	return &Validator{
		columns:     columns,
		mapper:      mapping.NewMapper(columns, region),
		phoneRegion: region,
	}
}

// Validate checks every row of the dataset.
func (v *Validator) Validate(ds *types.Dataset) Result {
	result := Result{Rows: ds.Len()}
	if ds == nil {
		return result
	}
	for _, row := range ds.Rows {
		issues := v.ValidateRow(row)
		if len(issues) > 0 {
			result.RowsWithIssues++
			result.Issues = append(result.Issues, issues...)
		}
	}
	return result
}

// ValidateRow returns the issues found in a single row.
func (v *Validator) ValidateRow(row types.Row) []Issue {
	var issues []Issue
	add := func(field, value, rule, msg string) {
		issues = append(issues, Issue{Line: row.Line, Field: field, Value: value, Rule: rule, Message: msg})
	}

	if v.mapper.CompanyName(row) == "" {
		add(v.columns.Company, "", RuleMissingCompany,
			fmt.Sprintf("company name is empty; it will be imported as %q", mapping.UnknownCompany))
	}

	if email := v.mapper.Email(row); email != "" && !emailPattern.MatchString(strings.ToLower(email)) {
		add(v.columns.Email, email, RuleEmail, "email address is malformed")
	}

	if website := row.Get(v.columns.Website); website != "" {
		domain := mapping.ExtractDomain(website)
		if !isDomainValid(domain) {
			add(v.columns.Website, website, RuleDomain, "website has no usable domain")
		} else if _, err := idnaProfile.ToASCII(domain); err != nil {
			add(v.columns.Website, website, RuleDomain, fmt.Sprintf("domain %q is not valid: %v", domain, err))
		}
	}

	if size := row.Get(v.columns.Size); size != "" && !digitPattern.MatchString(size) {
		add(v.columns.Size, size, RuleSize, "size has no number; employees will be empty")
	}

	phoneColumn := v.columns.Phone
	rawPhone := row.Get(v.columns.Phone)
	if rawPhone == "" {
		phoneColumn = v.columns.WhatsApp
		rawPhone = row.Get(v.columns.WhatsApp)
	}
	if rawPhone != "" && v.phoneRegion != "" && !mapping.PhoneIsValid(rawPhone, v.phoneRegion) {
		add(phoneColumn, rawPhone, RulePhone,
			fmt.Sprintf("phone is not a valid number for region %s; it will be sent unchanged", v.phoneRegion))
	}

	if _, ok := v.mapper.Person(row, ""); !ok {
		add(v.columns.Email, "", RuleNoContact, "no email or phone; no person will be created")
	}

	return issues
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
