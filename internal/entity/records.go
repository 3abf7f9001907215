package entity

import "github.com/joseph-ayodele/records-extractor/constants"

// Row is implemented by records that know their column order.
type Row interface {
	Columns() []string
	Values() []any
}

// InvoiceRecord is one invoice line. Values are strings, numbers, or constants.NotAvailable.
type InvoiceRecord struct {
	SerialNumber any `json:"Serial Number"`
	CustomerName any `json:"Customer Name"`
	ProductName  any `json:"Product Name"`
	Qty          any `json:"Qty"`
	Tax          any `json:"Tax"`
	TotalAmount  any `json:"Total Amount"`
	Date         any `json:"Date"`
}

func (r InvoiceRecord) Columns() []string {
	return []string{"Serial Number", "Customer Name", "Product Name", "Qty", "Tax", "Total Amount", "Date"}
}

func (r InvoiceRecord) Values() []any {
	return []any{r.SerialNumber, r.CustomerName, r.ProductName, r.Qty, r.Tax, r.TotalAmount, r.Date}
}

// ProductRecord is one product. Category is always null from spreadsheets.
type ProductRecord struct {
	ProductName   any     `json:"Product Name"`
	Category      *string `json:"Category"`
	Tax           any     `json:"Tax"`
	UnitPrice     any     `json:"Unit Price"`
	StockQuantity any     `json:"Stock Quantity"`
	PriceWithTax  any     `json:"Price with Tax"`
}

func (r ProductRecord) Columns() []string {
	return []string{"Product Name", "Category", "Tax", "Unit Price", "Stock Quantity", "Price with Tax"}
}

func (r ProductRecord) Values() []any {
	var category any
	if r.Category != nil {
		category = *r.Category
	}
	return []any{r.ProductName, category, r.Tax, r.UnitPrice, r.StockQuantity, r.PriceWithTax}
}

// CustomerRecord is one customer.
type CustomerRecord struct {
	CustomerName        any `json:"Customer Name"`
	PhoneNumber         any `json:"Phone Number"`
	TotalPurchaseAmount any `json:"Total Purchase Amount"`
}

func (r CustomerRecord) Columns() []string {
	return []string{"Customer Name", "Phone Number", "Total Purchase Amount"}
}

func (r CustomerRecord) Values() []any {
	return []any{r.CustomerName, r.PhoneNumber, r.TotalPurchaseAmount}
}

// Records holds the three families for one document. Spreadsheet rows are typed
// records; model output is kept as decoded JSON values.
type Records struct {
	Invoices  []any `json:"invoices"`
	Products  []any `json:"products"`
	Customers []any `json:"customers"`
}

// NewRecords returns Records with non-nil, empty families so they encode as [].
func NewRecords() Records {
	return Records{
		Invoices:  []any{},
		Products:  []any{},
		Customers: []any{},
	}
}

// Family returns the sequence for f.
func (r Records) Family(f constants.Family) []any {
	switch f {
	case constants.Invoices:
		return r.Invoices
	case constants.Products:
		return r.Products
	case constants.Customers:
		return r.Customers
	}
	return nil
}

// Set replaces the sequence for f; nil becomes empty.
func (r *Records) Set(f constants.Family, items []any) {
	if items == nil {
		items = []any{}
	}
	switch f {
	case constants.Invoices:
		r.Invoices = items
	case constants.Products:
		r.Products = items
	case constants.Customers:
		r.Customers = items
	}
}

// Append adds other's records after r's, family by family.
func (r *Records) Append(other Records) {
	r.Invoices = append(r.Invoices, other.Invoices...)
	r.Products = append(r.Products, other.Products...)
	r.Customers = append(r.Customers, other.Customers...)
}

// Counts returns the number of records per family.
func (r Records) Counts() (invoices, products, customers int) {
	return len(r.Invoices), len(r.Products), len(r.Customers)
}
