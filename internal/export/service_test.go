package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/records-extractor/constants"
	"github.com/joseph-ayodele/records-extractor/internal/entity"
)

func openWorkbook(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestRecordsXLSX_Sheets(t *testing.T) {
	b, err := NewService(nil).RecordsXLSX(entity.NewRecords())
	require.NoError(t, err)

	f := openWorkbook(t, b)
	assert.Equal(t, []string{"Invoices", "Products", "Customers"}, f.GetSheetList())

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRecordsXLSX_TypedRecords(t *testing.T) {
	recs := entity.NewRecords()
	recs.Invoices = append(recs.Invoices, entity.InvoiceRecord{
		SerialNumber: "A-1",
		CustomerName: "Ada",
		ProductName:  "Pen",
		Qty:          float64(3),
		Tax:          constants.NotAvailable,
		TotalAmount:  12.5,
		Date:         "2024-01-01",
	})
	recs.Products = append(recs.Products, entity.ProductRecord{ProductName: "Pen"})

	b, err := NewService(nil).RecordsXLSX(recs)
	require.NoError(t, err)
	f := openWorkbook(t, b)

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, entity.InvoiceRecord{}.Columns(), rows[0])
	assert.Equal(t, []string{"A-1", "Ada", "Pen", "3", "N/A", "12.5", "2024-01-01"}, rows[1])

	rows, err = f.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Category", rows[0][1])
	assert.Equal(t, "Pen", rows[1][0])
}

func TestRecordsXLSX_DecodedObjects(t *testing.T) {
	recs := entity.NewRecords()
	recs.Customers = []any{
		map[string]any{"Phone Number": "555", "Customer Name": "Zed"},
		map[string]any{"Customer Name": "Amy", "Total Purchase Amount": json.Number("40")},
	}

	b, err := NewService(nil).RecordsXLSX(recs)
	require.NoError(t, err)
	f := openWorkbook(t, b)

	rows, err := f.GetRows("Customers")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Customer Name", "Phone Number", "Total Purchase Amount"}, rows[0])
	assert.Equal(t, []string{"Zed", "555"}, rows[1])
	assert.Equal(t, []string{"Amy", "", "40"}, rows[2])
}

func TestColumns_FirstSeenOrder(t *testing.T) {
	got := columns([]any{
		map[string]any{"b": 1, "a": 2},
		map[string]any{"c": 1, "a": 2},
		"scalar",
	})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestCellValue(t *testing.T) {
	assert.Nil(t, cellValue(nil))
	assert.Equal(t, 1.5, cellValue(json.Number("1.5")))
	assert.Equal(t, `{"k":"v"}`, cellValue(map[string]any{"k": "v"}))
	assert.Equal(t, "x", cellValue("x"))
}
