// Package csvimport reads bank-statement style CSV files into transaction rows.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Column names, matched case-insensitively against the header row.
const (
	ColumnDate        = "date"
	ColumnDescription = "description"
	ColumnValue       = "value"
	ColumnExtraInfo   = "extrainfo"
)

// MaxRows bounds a single import batch.
const MaxRows = 10000

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
}

var (
	ErrEmpty         = errors.New("csv has no rows")
	ErrMissingColumn = errors.New("csv header is missing a required column")
	ErrTooManyRows   = errors.New("csv has too many rows")
)

// Row is one parsed line of an import file.
type Row struct {
	Line        int
	Date        time.Time
	Description string
	ExtraInfo   *string
	Value       decimal.Decimal
}

// LineError reports a malformed line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Parse reads a header line followed by data lines. Date, description and
// value are required columns, extraInfo is optional. Blank lines are skipped.
func Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range []string{ColumnDate, ColumnDescription, ColumnValue} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	extraIdx, hasExtra := index[ColumnExtraInfo]

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &LineError{Line: parseErr.StartLine, Err: parseErr.Err}
			}
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		if len(rows) == MaxRows {
			return nil, ErrTooManyRows
		}

		row, err := parseRecord(record, index, extraIdx, hasExtra)
		if err != nil {
			return nil, &LineError{Line: line, Err: err}
		}
		row.Line = line
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	return rows, nil
}

func parseRecord(record []string, index map[string]int, extraIdx int, hasExtra bool) (Row, error) {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	var row Row

	date, err := parseDate(field(index[ColumnDate]))
	if err != nil {
		return row, err
	}
	row.Date = date

	row.Description = field(index[ColumnDescription])
	if row.Description == "" {
		return row, errors.New("description is empty")
	}

	value, err := decimal.NewFromString(field(index[ColumnValue]))
	if err != nil {
		return row, fmt.Errorf("invalid value %q", field(index[ColumnValue]))
	}
	row.Value = value

	if hasExtra {
		if extra := field(extraIdx); extra != "" {
			row.ExtraInfo = &extra
		}
	}
	return row, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
