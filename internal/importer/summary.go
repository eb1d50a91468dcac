package importer

import (
	"fmt"
	"io"
	"strings"
)

var rule = strings.Repeat("=", 60)

// PrintSummary writes the end-of-run tally and the created company names.
func PrintSummary(w io.Writer, result *Result, crmURL string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	if result.DryRun {
		fmt.Fprintln(w, "📊 Import Summary (dry run - nothing was sent)")
	} else {
		fmt.Fprintln(w, "📊 Import Summary")
	}
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "✅ Companies created: %d/%d\n", len(result.Companies), result.Total)
	fmt.Fprintf(w, "✅ People/Contacts created: %d\n", len(result.People))
	if n := len(result.Failures); n > 0 {
		fmt.Fprintf(w, "❌ Failed mutations: %d\n", n)
	}
	if result.Interrupted {
		fmt.Fprintf(w, "⚠️  Interrupted after %d/%d rows\n", result.Processed, result.Total)
	}
	fmt.Fprintf(w, "\n🌐 View in Twenty CRM: %s\n", crmURL)

	if len(result.Companies) > 0 {
		fmt.Fprintln(w, "\n📋 Created Companies:")
		for _, c := range result.Companies {
			fmt.Fprintf(w, "   - %s\n", c.Name)
		}
	}
}
