// Package sheetstore adapts a spreadsheet-style tabular document store to the
// row/cell operations the domain repositories need. Worksheets are addressed by
// name, rows and columns are 1-based, and row 1 is always the header row.
package sheetstore

import (
	"context"
	"strconv"
	"strings"
)

// Worksheet names used by the application.
const (
	SheetProducts     = "Products"
	SheetOrders       = "Orders"
	SheetInventoryLog = "Inventory_Log"
)

// Canonical header rows. Bootstrap creates missing worksheets with these and
// appends any column an existing worksheet lacks.
var (
	ProductHeaders = []string{
		"ID", "Name", "Price", "Stock", "Category", "Description",
		"Created_At", "Updated_At", "Import_Price",
	}
	OrderHeaders = []string{
		"Order_ID", "Customer_Name", "Customer_Phone", "Customer_Address",
		"Items", "Subtotal", "Discount_Amount", "Delivery_Fee", "Total_Amount",
		"Status", "Order_Date", "Payment_Method", "Amount_Received",
	}
	InventoryLogHeaders = []string{
		"ID", "Product_ID", "Action", "Quantity_Change",
		"Previous_Stock", "New_Stock", "Date", "Reason",
	}
)

// CellUpdate addresses a single cell write within a worksheet.
type CellUpdate struct {
	Row   int
	Col   int
	Value interface{}
}

// RowStore is the storage interface every repository is built on. The remote
// implementation talks to the spreadsheet API; the in-memory implementation
// backs tests and credential-less local runs.
type RowStore interface {
	// ReadAllRows returns every row of the worksheet including the header row.
	ReadAllRows(ctx context.Context, sheet string) ([][]string, error)

	// ReadColumn returns a single 1-based column top to bottom, header cell included.
	ReadColumn(ctx context.Context, sheet string, col int) ([]string, error)

	// Headers returns the first row of the worksheet.
	Headers(ctx context.Context, sheet string) ([]string, error)

	// UpdateCell writes one cell.
	UpdateCell(ctx context.Context, sheet string, row, col int, value interface{}) error

	// BatchUpdateCells applies every update in a single round trip.
	BatchUpdateCells(ctx context.Context, sheet string, updates []CellUpdate) error

	// AppendRows appends rows after the last non-empty row in a single round trip.
	AppendRows(ctx context.Context, sheet string, rows [][]interface{}) error

	// EnsureSheet creates the worksheet with the given headers if it does not
	// exist, and appends any missing header columns to an existing one. It is
	// idempotent and never touches data rows.
	EnsureSheet(ctx context.Context, sheet string, headers []string) error
}

// HeaderIndex maps normalized header names to their 1-based column positions.
// Normalization lowercases, trims, and treats spaces as underscores, so
// "Import Price" and "Import_Price" resolve to the same column.
func HeaderIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		key := NormalizeHeader(h)
		if key == "" {
			continue
		}
		if _, dup := idx[key]; !dup {
			idx[key] = i + 1
		}
	}
	return idx
}

// NormalizeHeader canonicalizes a header cell for lookup.
func NormalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// RowLookup maps trimmed ID values to their 1-based row numbers. The header
// cell and blank cells are skipped; data rows start at row 2.
func RowLookup(column []string) map[string]int {
	rows := make(map[string]int, len(column))
	for i, v := range column {
		if i == 0 {
			continue
		}
		id := strings.TrimSpace(v)
		if id == "" {
			continue
		}
		if _, dup := rows[id]; !dup {
			rows[id] = i + 1
		}
	}
	return rows
}

// SafeFloat parses a numeric cell defensively: currency symbols and thousands
// separators are stripped, blanks and garbage coerce to zero.
func SafeFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// SafeInt parses an integer cell with the same fallback rules as SafeFloat.
// Values stored as "3.0" still parse as 3.
func SafeInt(s string) int {
	return int(SafeFloat(s))
}

// Cell returns the trimmed cell at a 1-based column, or "" when the row is
// too short.
func Cell(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return strings.TrimSpace(row[col-1])
}
