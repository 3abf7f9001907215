package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/records-extractor/constants"
	"github.com/joseph-ayodele/records-extractor/internal/entity"
)

// MIMEType is the content type of the workbooks produced here.
const MIMEType = constants.MIMESpreadsheet

// Service renders extracted records as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// RecordsXLSX returns a workbook with one sheet per family (Invoices, Products, Customers).
// Typed records keep their declared column order. For decoded JSON objects the header is
// the union of keys in first-seen order; keys new to a given object are added sorted.
func (s *Service) RecordsXLSX(records entity.Records) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, fam := range constants.Families() {
		sheet := string(fam)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("new sheet %q: %w", sheet, err)
		}
		if err := writeFamily(f, sheet, records.Family(fam)); err != nil {
			return nil, fmt.Errorf("write %s: %w", sheet, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	inv, prod, cust := records.Counts()
	s.logger.Info("export.xlsx.ok",
		"invoices", inv,
		"products", prod,
		"customers", cust,
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeFamily(f *excelize.File, sheet string, items []any) error {
	header := columns(items)
	if len(header) == 0 {
		return nil
	}
	if err := writeRow(f, sheet, 1, stringsToAny(header)); err != nil {
		return err
	}

	for i, item := range items {
		if err := writeRow(f, sheet, i+2, rowValues(item, header)); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 20)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// columns returns the header for a family.
func columns(items []any) []string {
	var out []string
	seen := map[string]bool{}
	add := func(keys ...string) {
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}

	for _, item := range items {
		switch v := item.(type) {
		case entity.Row:
			add(v.Columns()...)
		case map[string]any:
			var fresh []string
			for k := range v {
				if !seen[k] {
					fresh = append(fresh, k)
				}
			}
			sort.Strings(fresh)
			add(fresh...)
		}
	}
	return out
}

func rowValues(item any, header []string) []any {
	out := make([]any, len(header))
	switch v := item.(type) {
	case entity.Row:
		byName := make(map[string]any, len(header))
		vals := v.Values()
		for i, c := range v.Columns() {
			byName[c] = vals[i]
		}
		for i, h := range header {
			out[i] = cellValue(byName[h])
		}
	case map[string]any:
		for i, h := range header {
			out[i] = cellValue(v[h])
		}
	default:
		if len(out) > 0 {
			out[0] = cellValue(v)
		}
	}
	return out
}

// cellValue converts decoded JSON values into something excelize writes natively.
func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case string, bool, float64, float32, int, int64:
		return t
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
