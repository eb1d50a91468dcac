// =============================================================================
// CRM Contact Importer - Payload Mapping
// =============================================================================
//
// The Mapper turns a source row into the two mutation inputs sent to the CRM:
//
//   Row ──► CompanyInput ──► createCompany
//    │
//    └───► PersonInput  ──► createPerson (linked to the created company)
//
// Column names come from config.ColumnConfig so exports with different
// headers can be imported without code changes.
//
// =============================================================================

package mapping

import (
	"strings"

	"github.com/ginjaninja78/crm-contact-importer/internal/config"
	"github.com/ginjaninja78/crm-contact-importer/internal/types"
)

// UnknownCompany is the company name used when the row has none.
const UnknownCompany = "Unknown Company"

// =============================================================================
// PAYLOADS
// =============================================================================

// CompanyInput is the CompanyCreateInput sent with createCompany.
// Absent domain and employee values are sent as null.
type CompanyInput struct {
	Name       string  `json:"name"`
	DomainName *string `json:"domainName"`
	Employees  *int    `json:"employees"`
	Industry   string  `json:"industry"`
}

// PersonInput is the PersonCreateInput sent with createPerson.
// Empty fields are omitted from the request entirely.
type PersonInput struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	CompanyID string `json:"companyId,omitempty"`
}

// =============================================================================
// MAPPER
// =============================================================================

// Mapper maps rows to CRM payloads.
type Mapper struct {
	columns     config.ColumnConfig
	phoneRegion string
}

// NewMapper creates a Mapper reading the given columns. phoneRegion enables
// E.164 phone normalisation when non-empty.
func NewMapper(columns config.ColumnConfig, phoneRegion string) *Mapper {
	return &Mapper{
		columns:     columns,
		phoneRegion: strings.ToUpper(strings.TrimSpace(phoneRegion)),
	}
}

// CompanyName returns the raw company column, which may be empty.
func (m *Mapper) CompanyName(row types.Row) string {
	return row.Get(m.columns.Company)
}

// Company builds the createCompany input for a row.
func (m *Mapper) Company(row types.Row) CompanyInput {
	input := CompanyInput{
		Name:     m.CompanyName(row),
		Industry: row.Get(m.columns.Industry),
	}
	if input.Name == "" {
		input.Name = UnknownCompany
	}

	if domain := ExtractDomain(row.Get(m.columns.Website)); domain != "" {
		input.DomainName = &domain
	}
	if n, ok := ParseEmployees(row.Get(m.columns.Size)); ok {
		input.Employees = &n
	}

	return input
}

// Phone returns the row's phone, falling back to the WhatsApp column.
func (m *Mapper) Phone(row types.Row) string {
	phone := row.Get(m.columns.Phone)
	if phone == "" {
		phone = row.Get(m.columns.WhatsApp)
	}
	return NormalizePhone(phone, m.phoneRegion)
}

// Email returns the row's email column.
func (m *Mapper) Email(row types.Row) string {
	return row.Get(m.columns.Email)
}

// Person builds the createPerson input for a row linked to companyID.
//
// RETURNS:
//   - The person input.
//   - false when the row has neither an email nor a phone; no person should
//     be created for it.
func (m *Mapper) Person(row types.Row, companyID string) (PersonInput, bool) {
	email := m.Email(row)
	phone := m.Phone(row)
	if email == "" && phone == "" {
		return PersonInput{}, false
	}

	return PersonInput{
		Name:      ContactName(row.Get(m.columns.ContactName), email, m.CompanyName(row)),
		Email:     email,
		Phone:     phone,
		CompanyID: companyID,
	}, true
}
