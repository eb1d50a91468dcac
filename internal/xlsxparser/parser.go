// =============================================================================
// CRM Contact Importer - XLSX Parser Module
// =============================================================================
//
// This module reads contact exports saved as Excel workbooks. The layout is
// the same as the CSV input: the first row of the sheet is the header row,
// every following non-empty row is a contact.
//
// The excelize library is used to read the workbook. Only cell values are
// read; formatting, formulas and merged cells are ignored.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/crm-contact-importer/internal/csvparser"
	"github.com/ginjaninja78/crm-contact-importer/internal/types"
)

// IsWorkbook reports whether the path looks like an Excel workbook.
func IsWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	default:
		return false
	}
}

// Parse reads a workbook sheet and returns the parsed data.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//   - sheet: The sheet name. Empty selects the first sheet.
//
// RETURNS:
//   - The parsed dataset, with the same empty-row and missing-column
//     semantics as csvparser.Parse.
//   - csvparser.ErrFileNotFound (wrapped) when the file does not exist.
func Parse(path, sheet string) (*types.Dataset, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", csvparser.ErrFileNotFound, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %q: %w", sheetName, err)
	}

	dataset := csvparser.RowsFromRecords(rows)
	dataset.SourceFile = path
	return dataset, nil
}
