package constants

// Family is one of the three record families returned for every upload.
type Family string

const (
	Invoices  Family = "Invoices"
	Products  Family = "Products"
	Customers Family = "Customers"
)

// NotAvailable fills fields with no source data.
const NotAvailable = "N/A"

var allFamilies = []Family{Invoices, Products, Customers}

// Families returns the record families in response order.
func Families() []Family {
	out := make([]Family, len(allFamilies))
	copy(out, allFamilies)
	return out
}
