// =============================================================================
// CRM Contact Importer - Main Entry Point
// =============================================================================
//
// USAGE:
//   importer import <file>     - Import companies and contacts into Twenty CRM
//   importer validate <file>   - Check an input file without contacting the CRM
//   importer version           - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : Cobra command definitions and the run driver
//   - internal/  : Readers, mapping, CRM client, import pipeline, reports
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/crm-contact-importer/cmd"
)

func main() {
	cmd.Execute()
}
