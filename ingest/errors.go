package ingest

import "strings"

// ParseError means the uploaded bytes could not be turned into records at
// all: unknown file type, structurally empty file, or no data rows.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return e.Msg
}

// SchemaError is a whole-batch failure: the file's header set is missing one
// or more required columns. Found and Required are reported back to the
// client so the user can fix the file.
type SchemaError struct {
	Missing  []string
	Found    []string
	Required []string
}

func (e *SchemaError) Error() string {
	return "Missing required columns: " + strings.Join(e.Missing, ", ")
}

// EmptyResultError means the file had data rows but none survived
// validation. Distinct from ParseError's "no data rows" case.
type EmptyResultError struct{}

func (e *EmptyResultError) Error() string {
	return "No valid records found. Please check your data format."
}
