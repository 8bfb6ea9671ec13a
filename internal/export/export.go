package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	FormatExcel = "excel"
	FormatCSV   = "csv"

	dataSheet    = "Report Data"
	summarySheet = "Summary"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Table is a flat report ready for export: one header row, data rows and
// a list of summary key/value pairs.
type Table struct {
	Columns []string
	Rows    [][]any
	Summary []SummaryField
}

type SummaryField struct {
	Label string
	Value any
}

func Extension(format string) (string, error) {
	switch format {
	case FormatExcel:
		return "xlsx", nil
	case FormatCSV:
		return "csv", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func ContentType(format string) string {
	if format == FormatExcel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename builds "<type>_report_<YYYYmmdd_HHMMSS>.<ext>".
func Filename(reportType, format string, at time.Time) (string, error) {
	ext, err := Extension(format)
	if err != nil {
		return "", err
	}
	base := strings.ToLower(strings.TrimSpace(reportType))
	if base == "" {
		base = "export"
	}
	return fmt.Sprintf("%s_report_%s.%s", base, at.Format("20060102_150405"), ext), nil
}

func Write(w io.Writer, format string, t Table) error {
	switch format {
	case FormatExcel:
		return WriteXLSX(w, t)
	case FormatCSV:
		return WriteCSV(w, t)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// WriteCSV writes the header and data rows only.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		record = record[:0]
		for _, cell := range row {
			record = append(record, formatCell(cell))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with a data sheet and a summary sheet.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), dataSheet); err != nil {
		return err
	}
	if err := setRow(f, dataSheet, 1, toCells(t.Columns)); err != nil {
		return err
	}
	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = xlsxValue(cell)
		}
		if err := setRow(f, dataSheet, i+2, cells); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	if err := setRow(f, summarySheet, 1, []any{"Metric", "Value"}); err != nil {
		return err
	}
	for i, field := range t.Summary {
		if err := setRow(f, summarySheet, i+2, []any{field.Label, xlsxValue(field.Value)}); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func xlsxValue(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		return val.InexactFloat64()
	case *float64:
		if val == nil {
			return ""
		}
		return *val
	case time.Time:
		return val.Format(time.RFC3339)
	}
	return v
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case decimal.Decimal:
		return val.StringFixed(2)
	case *float64:
		if val == nil {
			return ""
		}
		return fmt.Sprint(*val)
	case time.Time:
		return val.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}
