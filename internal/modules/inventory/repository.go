package inventory

import "context"

// Repository defines data access for stock levels and the inventory ledger.
// It is the only code that writes the Stock column; the order engine and the
// admin operations both go through it.
type Repository interface {
	// Append adds ledger entries in one batched append. Pure append: no
	// reads, no validation beyond structural completeness.
	Append(ctx context.Context, entries []LogEntry) error

	// Log returns up to limit entries in stored (oldest-first) order,
	// taking the tail when the ledger is longer.
	Log(ctx context.Context, limit int) ([]LogEntry, error)

	// WriteStock overwrites the stock cell and Updated_At for every listed
	// product in one batched cell write.
	WriteStock(ctx context.Context, writes []StockWrite) error
}
