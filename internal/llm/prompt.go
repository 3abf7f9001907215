package llm

import "strings"

// ExtractionPrompt is the instruction sent with every AI-delegated document.
var ExtractionPrompt = BuildExtractionPrompt()

// BuildExtractionPrompt lists the three record families and their fields.
func BuildExtractionPrompt() string {
	lines := []string{
		"Extract the following information in JSON format:",
		"- Invoices: { Serial Number, Customer Name, Product Name, Qty, Tax, Total Amount, Date }",
		"- Products: { Product Name, Category, Unit Price, Tax, Price with Tax, Stock Quantity }",
		"- Customers: { Customer Name, Phone Number, Total Purchase Amount }",
		"Ensure the response follows strict JSON formatting.",
	}
	return strings.Join(lines, "\n")
}
