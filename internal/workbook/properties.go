// Package workbook extracts key/value properties from Excel workbooks.
package workbook

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	ErrSheetNotFound  = errors.New("worksheet not found")
	ErrColumnNotFound = errors.New("column not found")
)

// Properties maps a key cell to its typed value cell. Values are string, int64, float64,
// bool, time.Time or nil for an empty cell.
type Properties map[string]any

// Options names the worksheet and the header cells of the key and value columns.
type Options struct {
	Sheet       string
	KeyColumn   string
	ValueColumn string
}

func DefaultOptions() Options {
	return Options{
		Sheet:       "Properties",
		KeyColumn:   "Key",
		ValueColumn: "Value",
	}
}

// CellError is a cell whose content could not be converted.
type CellError struct {
	Sheet string
	Cell  string
	Err   error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("cell %s!%s: %v", e.Sheet, e.Cell, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

// ParseProperties opens workbook content and extracts the properties sheet.
func ParseProperties(r io.Reader, opts Options) (Properties, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to open workbook: %w", err)
	}
	defer f.Close()

	return ExtractProperties(f, opts)
}

// ExtractProperties reads the sheet row by row below the header row, which is the first
// non-blank row. A later row with the same key replaces an earlier one, rows without a key
// are skipped.
func ExtractProperties(f *excelize.File, opts Options) (Properties, error) {
	if idx, err := f.GetSheetIndex(opts.Sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, opts.Sheet)
	}

	rows, err := f.GetRows(opts.Sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	headerIdx := firstNonBlankRow(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("%w: worksheet %q has no header row", ErrColumnNotFound, opts.Sheet)
	}
	header := rows[headerIdx]

	keyCol, err := findColumn(header, opts.KeyColumn)
	if err != nil {
		return nil, err
	}
	valueCol, err := findColumn(header, opts.ValueColumn)
	if err != nil {
		return nil, err
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	c := converter{f: f, sheet: opts.Sheet, date1904: date1904}
	properties := Properties{}

	for rowIdx, row := range rows[headerIdx+1:] {
		rowNum := headerIdx + rowIdx + 2 // 1-based, after the header

		key, err := c.value(row, keyCol, rowNum)
		if err != nil {
			return nil, err
		}

		k := formatKey(key)
		if k == "" {
			continue
		}

		value, err := c.value(row, valueCol, rowNum)
		if err != nil {
			return nil, err
		}

		properties[k] = value
	}

	return properties, nil
}

func firstNonBlankRow(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return i
			}
		}
	}

	return -1
}

func findColumn(header []string, name string) (int, error) {
	for i, cell := range header {
		if strings.TrimSpace(cell) == name {
			return i, nil
		}
	}

	return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

type converter struct {
	f        *excelize.File
	sheet    string
	date1904 bool
}

func (c converter) value(row []string, col, rowNum int) (any, error) {
	if col >= len(row) || row[col] == "" {
		return nil, nil
	}

	raw := row[col]
	cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
	if err != nil {
		return nil, err
	}

	typ, err := c.f.GetCellType(c.sheet, cell)
	if err != nil {
		return nil, &CellError{Sheet: c.sheet, Cell: cell, Err: err}
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil

	case excelize.CellTypeDate:
		t, err := parseISODate(raw)
		if err != nil {
			return nil, &CellError{Sheet: c.sheet, Cell: cell, Err: err}
		}
		return t, nil

	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeError:
		return raw, nil
	}

	// numeric or untyped cell
	n := parseValue(raw)
	num, ok := n.(float64)
	if i, isInt := n.(int64); isInt {
		num, ok = float64(i), true
	}

	if ok && isDateFormat(c.f, c.sheet, cell) {
		t, err := excelize.ExcelDateToTime(num, c.date1904)
		if err != nil {
			return nil, &CellError{Sheet: c.sheet, Cell: cell, Err: err}
		}
		// serials below one day carry no date
		if num >= 0 && num < 1 {
			return ClockFormat(t), nil
		}
		return t, nil
	}

	return n, nil
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func parseISODate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid ISO 8601 date %q", s)
}

func formatKey(v any) string {
	switch k := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(k)
	case time.Time:
		return ISOFormat(k)
	case bool:
		return strconv.FormatBool(k)
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64)
	default:
		return fmt.Sprint(k)
	}
}

// ClockFormat formats the time of day of t as HH:MM:SS, with microseconds only when they
// are non-zero.
func ClockFormat(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		return t.Format("15:04:05.000000")
	}
	return t.Format("15:04:05")
}

// ISOFormat formats t as an ISO 8601 local date-time, with microseconds only when they
// are non-zero.
func ISOFormat(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		return t.Format("2006-01-02T15:04:05.000000")
	}
	return t.Format("2006-01-02T15:04:05")
}
