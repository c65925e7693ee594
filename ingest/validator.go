package ingest

import (
	"strings"

	"github.com/shopspring/decimal"

	"ledgerlight/backend/models"
)

// Validate filters parsed records down to the ones with every required
// column present and a non-negative numeric Price. The header set is checked
// first: missing columns fail the whole batch with a SchemaError. Zero
// surviving rows is an EmptyResultError, which callers must keep distinct
// from a file that had no rows at all.
func Validate(parsed *ParseResult) ([]models.Record, int, error) {
	var missing []string
	for _, col := range models.RequiredColumns {
		if !contains(parsed.Headers, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, 0, &SchemaError{
			Missing:  missing,
			Found:    parsed.Headers,
			Required: models.RequiredColumns,
		}
	}

	valid := make([]models.Record, 0, len(parsed.Records))
	for _, record := range parsed.Records {
		if validRecord(record) {
			valid = append(valid, record)
		}
	}

	if len(valid) == 0 {
		return nil, 0, &EmptyResultError{}
	}

	return valid, len(parsed.Records) - len(valid), nil
}

func validRecord(record models.Record) bool {
	for _, col := range models.RequiredColumns {
		if strings.TrimSpace(record[col]) == "" {
			return false
		}
	}

	price, err := decimal.NewFromString(strings.TrimSpace(record["Price"]))
	if err != nil {
		return false
	}
	return !price.IsNegative()
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
