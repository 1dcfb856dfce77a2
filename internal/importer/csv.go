package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// minCSVFields is subject,course,section,date,time,duration; building and room are optional.
const minCSVFields = 6

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVResult holds the rows read from a CSV upload. Malformed counts data lines with too few fields.
type CSVResult struct {
	Rows      []models.ParsedExamRow
	Malformed int
}

// ReadCSV parses a comma-delimited schedule whose first line is a header.
func ReadCSV(r io.Reader, filter RowFilter, parser *Parser) (CSVResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return CSVResult{}, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	result := CSVResult{Rows: make([]models.ParsedExamRow, 0)}
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return CSVResult{}, fmt.Errorf("parse csv line: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(record) < minCSVFields {
			result.Malformed++
			continue
		}

		subject := Normalize(record[0])
		course := Normalize(record[1])
		section := Normalize(record[2])
		if subject == "" || section == "" {
			result.Malformed++
			continue
		}
		if !filter.matches(subject, course) {
			continue
		}

		result.Rows = append(result.Rows, buildRow(parser, subject, course, section,
			record[3], record[4], record[5], field(record, 6), field(record, 7)))
	}
	return result, nil
}

func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}
