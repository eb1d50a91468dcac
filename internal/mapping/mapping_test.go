package mapping

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ginjaninja78/crm-contact-importer/internal/config"
	"github.com/ginjaninja78/crm-contact-importer/internal/types"
)

func row(fields map[string]string) types.Row {
	return types.Row{Line: 2, Fields: fields}
}

func TestExtractDomain(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"https://www.Example.com/page", "Example.com"},
		{"http://acme.test", "acme.test"},
		{"www.acme.test/about/team", "acme.test"},
		{"acme.test", "acme.test"},
		{"", ""},
		{"   ", ""},
		{"/just/a/path", ""},
	}
	for _, c := range cases {
		if got := ExtractDomain(c.input); got != c.want {
			t.Errorf("ExtractDomain(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestParseEmployees(t *testing.T) {
	cases := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"Mid (250-999)", 250, true},
		{"Large (900+)", 900, true},
		{"50", 50, true},
		{"N/A", 0, false},
		{"", 0, false},
		{"99999999999999999999999", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseEmployees(c.input)
		if ok != c.wantOK || got != c.want {
			t.Errorf("ParseEmployees(%q) = (%d, %v), want (%d, %v)", c.input, got, ok, c.want, c.wantOK)
		}
	}
}

func TestContactName(t *testing.T) {
	cases := []struct {
		name, contact, email, company string
		want                          string
	}{
		{"explicit name wins", "Maria Lopez", "jane.doe@example.com", "Acme", "Maria Lopez"},
		{"email local part", "", "jane.doe@example.com", "Acme", "Jane Doe"},
		{"email local part upper", "", "JOHN@example.com", "Acme", "John"},
		{"company fallback", "", "", "Acme", "Contact at Acme"},
		{"email without at", "", "not-an-email", "Acme", "Contact at Acme"},
		{"empty local part", "", "@example.com", "Acme", "Contact at Acme"},
		{"no company", "", "", "", "Contact at Unknown"},
		{"blank explicit name", "   ", "ana@example.com", "Acme", "Ana"},
		{"underscore separated", "", "john_smith@example.com", "Acme", "John_Smith"},
		{"apostrophe", "", "o'brien@example.com", "Acme", "O'Brien"},
		{"digits split words", "", "mary2jane@example.com", "Acme", "Mary2Jane"},
		{"mixed case words", "", "ANA.maria_LOPEZ@example.com", "Acme", "Ana Maria_Lopez"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ContactName(c.contact, c.email, c.company); got != c.want {
				t.Fatalf("ContactName() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	if got := NormalizePhone("(650) 253-0000", "US"); got != "+16502530000" {
		t.Fatalf("expected E.164, got %q", got)
	}
	if got := NormalizePhone(" 604 555 ", ""); got != "604 555" {
		t.Fatalf("expected passthrough without region, got %q", got)
	}
	if got := NormalizePhone("call me", "US"); got != "call me" {
		t.Fatalf("expected unparseable phone unchanged, got %q", got)
	}
}

func TestMapperCompany(t *testing.T) {
	m := NewMapper(config.DefaultColumns(), "")

	in := m.Company(row(map[string]string{
		"Company":  "Acme",
		"Website":  "https://www.Acme.test/contact",
		"Size":     "Mid (250-999)",
		"Industry": "Events",
	}))
	if in.Name != "Acme" || in.Industry != "Events" {
		t.Fatalf("unexpected company: %+v", in)
	}
	if in.DomainName == nil || *in.DomainName != "Acme.test" {
		t.Fatalf("unexpected domain: %v", in.DomainName)
	}
	if in.Employees == nil || *in.Employees != 250 {
		t.Fatalf("unexpected employees: %v", in.Employees)
	}
}

func TestMapperCompanyDefaults(t *testing.T) {
	m := NewMapper(config.DefaultColumns(), "")

	in := m.Company(row(map[string]string{"Email": "x@y.test"}))
	if in.Name != UnknownCompany {
		t.Fatalf("expected %q, got %q", UnknownCompany, in.Name)
	}

	body, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	got := string(body)
	if !strings.Contains(got, `"domainName":null`) || !strings.Contains(got, `"employees":null`) {
		t.Fatalf("absent company fields should be null: %s", got)
	}
}

func TestMapperPerson(t *testing.T) {
	m := NewMapper(config.DefaultColumns(), "")

	p, ok := m.Person(row(map[string]string{
		"Company": "Acme",
		"Email":   "jane.doe@example.com",
	}), "company-1")
	if !ok {
		t.Fatalf("expected person for row with email")
	}
	if p.Name != "Jane Doe" || p.Email != "jane.doe@example.com" || p.CompanyID != "company-1" {
		t.Fatalf("unexpected person: %+v", p)
	}

	body, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(body), "phone") {
		t.Fatalf("empty phone should be omitted: %s", body)
	}
}

func TestMapperPersonWhatsAppFallback(t *testing.T) {
	m := NewMapper(config.DefaultColumns(), "")

	p, ok := m.Person(row(map[string]string{
		"Company":  "Acme",
		"WhatsApp": "+57 300 000 0000",
	}), "")
	if !ok {
		t.Fatalf("expected person for row with whatsapp")
	}
	if p.Phone != "+57 300 000 0000" {
		t.Fatalf("expected whatsapp as phone, got %q", p.Phone)
	}
	if p.Name != "Contact at Acme" {
		t.Fatalf("unexpected name: %q", p.Name)
	}

	body, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(body), "companyId") || strings.Contains(string(body), "email") {
		t.Fatalf("empty fields should be omitted: %s", body)
	}
}

func TestMapperPersonWithoutContactDetails(t *testing.T) {
	m := NewMapper(config.DefaultColumns(), "")

	if _, ok := m.Person(row(map[string]string{"Company": "Acme", "Contact Name": "Ana"}), "c1"); ok {
		t.Fatalf("expected no person without email or phone")
	}
}

func TestMapperCustomColumns(t *testing.T) {
	cols := config.DefaultColumns()
	cols.Company = "Empresa"
	cols.Email = "Correo"
	m := NewMapper(cols, "")

	r := row(map[string]string{"Empresa": "Acme", "Correo": "ana.maria@acme.test"})
	if got := m.Company(r).Name; got != "Acme" {
		t.Fatalf("expected company from custom column, got %q", got)
	}
	p, ok := m.Person(r, "c1")
	if !ok || p.Name != "Ana Maria" {
		t.Fatalf("unexpected person: %+v (ok=%v)", p, ok)
	}
}
