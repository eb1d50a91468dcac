// =============================================================================
// CRM Contact Importer - CSV Parser Module
// =============================================================================
//
// This module reads the contact export into a types.Dataset. It handles:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - A UTF-8 byte order mark on the header row
//   - Quoted fields and lazily quoted fields
//   - Rows with fewer or more fields than the header
//
// The header row defines the columns. Rows where every field is blank are
// skipped. No other schema is enforced.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/crm-contact-importer/internal/config"
	"github.com/ginjaninja78/crm-contact-importer/internal/types"
)

// ErrFileNotFound is returned when the input file does not exist.
var ErrFileNotFound = errors.New("CSV file not found")

const utf8BOM = "\ufeff"

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed data.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV parsing settings from the configuration.
//
// RETURNS:
//   - The parsed dataset. A header-only or zero-byte file yields a dataset
//     with no rows and no error; deciding what that means is the caller's job.
//   - ErrFileNotFound (wrapped with the path) if the file does not exist.
func Parse(filePath string, settings config.CSVSettings) (*types.Dataset, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	dataset, err := ParseReader(bufio.NewReader(file), settings)
	if err != nil {
		return nil, err
	}
	dataset.SourceFile = filePath
	return dataset, nil
}

// ParseReader parses CSV content from r.
func ParseReader(r io.Reader, settings config.CSVSettings) (*types.Dataset, error) {
	csvReader := csv.NewReader(r)
	configureReader(csvReader, settings)

	header, err := csvReader.Read()
	if err == io.EOF {
		return &types.Dataset{Rows: []types.Row{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	dataset := &types.Dataset{
		Headers: cleanHeaders(header),
		Rows:    []types.Row{},
	}

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		// Skip empty rows.
		if isRowEmpty(record) {
			continue
		}

		line, _ := csvReader.FieldPos(0)
		dataset.Rows = append(dataset.Rows, types.Row{
			Line:   line,
			Fields: toFields(record, dataset.Headers),
		})
	}

	return dataset, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = Delimiter(settings.Delimiter)

	// Allow variable number of fields per row; missing columns read as empty.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true

	reader.TrimLeadingSpace = true
}

// Delimiter resolves a configured delimiter name to the separator rune.
func Delimiter(name string) rune {
	switch name {
	case "\\t", "\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon":
		return ';'
	default:
		if len(name) > 0 {
			return []rune(name)[0]
		}
		return ','
	}
}

// cleanHeaders trims header values, strips a leading byte order mark and
// names empty headers by position so they cannot collide.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, utf8BOM)
		}
		header = strings.TrimSpace(header)

		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}

		cleaned[i] = header
	}

	return cleaned
}

// extractDataRows converts raw records to rows, skipping blank ones.
// firstLine is the source line number of records[0].
func extractDataRows(records [][]string, headers []string, firstLine int) []types.Row {
	rows := make([]types.Row, 0, len(records))

	for i, record := range records {
		if isRowEmpty(record) {
			continue
		}
		rows = append(rows, types.Row{
			Line:   firstLine + i,
			Fields: toFields(record, headers),
		})
	}

	return rows
}

// toFields maps a record onto the headers. Cells beyond the header count are
// dropped; missing cells become "".
func toFields(record []string, headers []string) map[string]string {
	fields := make(map[string]string, len(headers))
	for colIndex, header := range headers {
		if colIndex < len(record) {
			fields[header] = strings.TrimSpace(record[colIndex])
		} else {
			fields[header] = ""
		}
	}
	return fields
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// RowsFromRecords builds a dataset from already-read records whose first
// record is the header. Used by readers of other container formats.
func RowsFromRecords(records [][]string) *types.Dataset {
	if len(records) == 0 {
		return &types.Dataset{Rows: []types.Row{}}
	}
	headers := cleanHeaders(records[0])
	return &types.Dataset{
		Headers: headers,
		Rows:    extractDataRows(records[1:], headers, 2),
	}
}
