// =============================================================================
// CRM Contact Importer - Field Heuristics
// =============================================================================
//
// Pure functions that derive CRM fields from free-text contact columns.
// These are best-effort heuristics; they never validate what they produce:
//   - ExtractDomain   : website -> bare domain name
//   - ParseEmployees  : free-text company size -> first integer
//   - ContactName     : explicit name -> email local part -> company fallback
//   - NormalizePhone  : optional E.164 normalisation for a default region
//
// =============================================================================

package mapping

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// ExtractDomain strips scheme and "www." prefixes from a website and returns
// everything before the first "/".
//
// EXAMPLE:
//   Input:  "https://www.Example.com/page"
//   Output: "Example.com"
//
// Case is preserved. An empty result means there is no domain.
func ExtractDomain(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}

	website = strings.ReplaceAll(website, "www.", "")
	website = strings.ReplaceAll(website, "http://", "")
	website = strings.ReplaceAll(website, "https://", "")

	domain, _, _ := strings.Cut(website, "/")
	return domain
}

// ParseEmployees returns the first run of digits found in a size description.
//
// EXAMPLE:
//   "Mid (250-999)" -> 250, true
//   "Large (900+)"  -> 900, true
//   "N/A"           -> 0, false
//
// Ranges are not interpreted; the lower bound wins because it comes first.
func ParseEmployees(size string) (int, bool) {
	run := digitRun.FindString(size)
	if run == "" {
		return 0, false
	}
	n, err := strconv.Atoi(run)
	if err != nil {
		// Out of range for int.
		return 0, false
	}
	return n, true
}

// ContactName derives a person's display name.
//
// PRECEDENCE:
//   1. contactName, when non-blank
//   2. the email local part, dots replaced by spaces and title-cased
//      ("jane.doe@example.com" -> "Jane Doe"); requires an "@" and a
//      non-blank local part
//   3. "Contact at {company}" ("Unknown" when company is blank)
func ContactName(contactName, email, company string) string {
	if name := strings.TrimSpace(contactName); name != "" {
		return name
	}

	email = strings.TrimSpace(email)
	if local, _, found := strings.Cut(email, "@"); found {
		name := titleWords(strings.ReplaceAll(local, ".", " "))
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}

	company = strings.TrimSpace(company)
	if company == "" {
		company = "Unknown"
	}
	return "Contact at " + company
}

// titleWords capitalises the first letter of every run of letters and
// lowercases the rest, so any non-letter starts a new word:
// "john_smith" -> "John_Smith", "o'brien" -> "O'Brien", "mary2jane" -> "Mary2Jane".
func titleWords(s string) string {
	caser := cases.Title(language.Und)

	var b strings.Builder
	b.Grow(len(s))

	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(caser.String(s[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(caser.String(s[start:]))
	}
	return b.String()
}

// NormalizePhone formats a phone number as E.164 using region for national
// numbers. Numbers that do not parse or are not valid are returned trimmed
// but otherwise unchanged, as is everything when region is empty.
func NormalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || region == "" {
		return raw
	}

	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return raw
	}
	if !phonenumbers.IsValidNumber(number) {
		return raw
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// PhoneIsValid reports whether raw parses as a valid number for region.
func PhoneIsValid(raw, region string) bool {
	number, err := phonenumbers.Parse(strings.TrimSpace(raw), region)
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(number) && phonenumbers.IsValidNumber(number)
}
