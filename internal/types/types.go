// =============================================================================
// CRM Contact Importer - Shared Types
// =============================================================================
//
// This package contains the row types shared by the readers and the import
// pipeline. Types defined here are used by:
//   - csvparser
//   - xlsxparser
//   - mapping
//   - importer
//   - validation
//
// =============================================================================

package types

// =============================================================================
// ROW TYPES
// =============================================================================

// Row represents a single record from the input file.
type Row struct {
	// Line is the 1-indexed line (or sheet row) number in the source file.
	// Useful for error reporting.
	Line int

	// Fields maps the column header to the (trimmed) cell value.
	Fields map[string]string
}

// Get returns the value of a column, or "" when the column is absent.
func (r Row) Get(column string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[column]
}

// Dataset represents a parsed input file.
type Dataset struct {
	// Headers contains the column headers in file order.
	Headers []string

	// Rows contains the non-empty data rows in file order.
	Rows []Row

	// SourceFile is the path the rows were read from.
	SourceFile string
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}
