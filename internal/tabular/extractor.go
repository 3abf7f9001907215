package tabular

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/records-extractor/constants"
	"github.com/joseph-ayodele/records-extractor/internal/entity"
)

// DefaultMaxRows is the number of data rows read after the header row.
const DefaultMaxRows = 15

// Fixed column positions (0-indexed) of the source sheet.
const (
	colSerialNumber = 0
	colDate         = 1
	colAmount       = 2 // Total Amount on invoices, Unit Price on products
	colProductName  = 3
	colQuantity     = 4 // Qty on invoices, Stock Quantity on products
	colPriceWithTax = 5
	colTax          = 7
	colCustomerName = 8
	colPhoneNumber  = 9
)

type Config struct {
	MaxRows int // data rows after the header; <= 0 reads every row
}

// Extractor maps the first sheet of an XLSX workbook onto the three record families.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// workbook is the subset of *excelize.File the extractor reads.
type workbook interface {
	GetSheetList() []string
	GetRows(sheet string, opts ...excelize.Options) ([][]string, error)
	GetCellType(sheet, cell string) (excelize.CellType, error)
}

// ExtractFile opens path and runs Extract on it.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (entity.Records, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return entity.Records{}, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			e.logger.Warn("tabular.close_error", "path", path, "error", err)
		}
	}(f)
	return e.Extract(ctx, f)
}

// Extract parses workbook bytes from r. A workbook without sheets yields empty families;
// short or malformed rows yield "N/A" fields rather than errors.
func (e *Extractor) Extract(ctx context.Context, r io.Reader) (entity.Records, error) {
	start := time.Now()
	f, err := excelize.OpenReader(r)
	if err != nil {
		e.logger.Error("tabular.open_error", "error", err)
		return entity.Records{}, fmt.Errorf("parse spreadsheet: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("tabular.workbook_close_error", "error", err)
		}
	}()

	out, err := e.extractWorkbook(ctx, f)
	if err != nil {
		return entity.Records{}, err
	}
	n, _, _ := out.Counts()
	e.logger.Info("tabular.extract.ok",
		"rows", n,
		"max_rows", e.cfg.MaxRows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (e *Extractor) extractWorkbook(ctx context.Context, wb workbook) (entity.Records, error) {
	out := entity.NewRecords()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		e.logger.Warn("tabular.no_sheets")
		return out, nil
	}
	sheet := sheets[0]

	rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return entity.Records{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	data, first := e.window(rows)
	for i, row := range data {
		if err := ctx.Err(); err != nil {
			return entity.Records{}, err
		}
		c := cells{wb: wb, sheet: sheet, row: row, rowNum: first + i}
		out.Invoices = append(out.Invoices, entity.InvoiceRecord{
			SerialNumber: c.value(colSerialNumber),
			CustomerName: c.value(colCustomerName),
			ProductName:  c.value(colProductName),
			Qty:          c.value(colQuantity),
			Tax:          c.value(colTax),
			TotalAmount:  c.value(colAmount),
			Date:         c.value(colDate),
		})
		out.Products = append(out.Products, entity.ProductRecord{
			ProductName:   c.value(colProductName),
			Category:      nil,
			Tax:           c.value(colTax),
			UnitPrice:     c.value(colAmount),
			StockQuantity: c.value(colQuantity),
			PriceWithTax:  c.value(colPriceWithTax),
		})
		out.Customers = append(out.Customers, entity.CustomerRecord{
			CustomerName:        c.value(colCustomerName),
			PhoneNumber:         c.value(colPhoneNumber),
			TotalPurchaseAmount: constants.NotAvailable,
		})
	}
	return out, nil
}

// window skips leading blank rows, drops the header row after them, and caps the
// data rows at MaxRows. first is the 1-based sheet row of data[0].
func (e *Extractor) window(rows [][]string) (data [][]string, first int) {
	header := 0
	for header < len(rows) && blankRow(rows[header]) {
		header++
	}
	if header > 0 {
		e.logger.Debug("tabular.leading_blank_rows", "rows", header)
	}
	if header+1 >= len(rows) {
		return nil, 0
	}
	data = rows[header+1:]
	if e.cfg.MaxRows > 0 && len(data) > e.cfg.MaxRows {
		e.logger.Debug("tabular.rows_truncated", "rows", len(data), "max_rows", e.cfg.MaxRows)
		data = data[:e.cfg.MaxRows]
	}
	return data, header + 2
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

type cells struct {
	wb     workbook
	sheet  string
	row    []string
	rowNum int
}

// value returns the cell at col as a number, bool or string, or "N/A" when empty.
// Whitespace-only text is a value, not an empty cell.
func (c cells) value(col int) any {
	if col >= len(c.row) {
		return constants.NotAvailable
	}
	raw := c.row[col]
	if raw == "" {
		return constants.NotAvailable
	}

	name, err := excelize.CoordinatesToCellName(col+1, c.rowNum)
	if err != nil {
		return raw
	}
	typ, err := c.wb.GetCellType(c.sheet, name)
	if err != nil {
		return raw
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case excelize.CellTypeBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}
