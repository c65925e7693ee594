package ingest

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"ledgerlight/backend/models"
)

// FileKind is the declared format of an uploaded file.
type FileKind int

const (
	KindUnknown FileKind = iota
	KindCSV
	KindExcel
)

// DetectKind maps a file name to its format by extension.
func DetectKind(fileName string) FileKind {
	name := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(name, ".xlsx"), strings.HasSuffix(name, ".xls"):
		return KindExcel
	case strings.HasSuffix(name, ".csv"):
		return KindCSV
	default:
		return KindUnknown
	}
}

// ParseResult is an ordered batch of parsed rows plus the header row that
// named their fields.
type ParseResult struct {
	Headers []string
	Records []models.Record
}

// Parse converts raw upload bytes into records. Row order is preserved.
// CSV rows whose field count does not match the header are dropped, not
// errored; that matches the system being ported.
func Parse(content []byte, kind FileKind) (*ParseResult, error) {
	var result *ParseResult
	var err error

	switch kind {
	case KindCSV:
		result, err = parseCSV(content)
	case KindExcel:
		result, err = parseExcel(content)
	default:
		return nil, &ParseError{Msg: "Unsupported file type. Please upload a CSV or Excel file."}
	}
	if err != nil {
		return nil, err
	}

	if len(result.Records) == 0 {
		return nil, &ParseError{Msg: "No data found in file"}
	}
	return result, nil
}

func parseCSV(content []byte) (*ParseResult, error) {
	var lines []string
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, &ParseError{Msg: "File is empty"}
	}

	headers := splitFields(lines[0])

	records := make([]models.Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := splitFields(line)
		if len(values) != len(headers) {
			continue
		}
		record := make(models.Record, len(headers))
		for i, header := range headers {
			record[header] = values[i]
		}
		records = append(records, record)
	}

	return &ParseResult{Headers: headers, Records: records}, nil
}

// splitFields is a plain comma split with trimming and surrounding-quote
// stripping. No quoted-comma handling: the source system split the same way.
func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	fields := make([]string, len(parts))
	for i, part := range parts {
		fields[i] = stripQuotes(strings.TrimSpace(part))
	}
	return fields
}

func stripQuotes(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

func parseExcel(content []byte) (*ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ParseError{Msg: "Failed to parse file: " + err.Error()}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Msg: "File is empty"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Msg: "Failed to parse file: " + err.Error()}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Msg: "File is empty"}
	}

	headers := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		headers[i] = strings.TrimSpace(cell)
	}

	var records []models.Record
	for _, row := range rows[1:] {
		record := make(models.Record, len(headers))
		empty := true
		for i, header := range headers {
			if i >= len(row) {
				break
			}
			value := strings.TrimSpace(row[i])
			if value != "" {
				empty = false
			}
			record[header] = value
		}
		// Spreadsheets routinely carry trailing blank rows; skip them.
		if empty {
			continue
		}
		records = append(records, record)
	}

	return &ParseResult{Headers: headers, Records: records}, nil
}
