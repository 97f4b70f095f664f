package inventory

import (
	"strings"

	"github.com/google/uuid"
)

// Action tags why a stock level moved.
type Action string

const (
	// ActionUpdate covers order deductions and direct stock overwrites.
	ActionUpdate Action = "UPDATE"
	// ActionAddStock covers restocks.
	ActionAddStock Action = "ADD_STOCK"
)

// LogEntry is one row of the append-only inventory ledger. Entries are never
// mutated or deleted.
type LogEntry struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	Action         Action `json:"action"`
	QuantityChange int    `json:"quantity_change"`
	PreviousStock  int    `json:"previous_stock"`
	NewStock       int    `json:"new_stock"`
	Date           string `json:"date"`
	Reason         string `json:"reason"`
}

// StockWrite is one staged stock-cell overwrite.
type StockWrite struct {
	ProductID string
	NewStock  int
}

// MutationStatus distinguishes a fully audited stock change from one whose
// ledger row could not be appended.
type MutationStatus string

const (
	MutationCompleted MutationStatus = "COMPLETED"
	// MutationDegradedAudit: the stock cell moved but the ledger append
	// failed, so the returned entry exists nowhere in the store. Operators
	// reconcile the ledger from it.
	MutationDegradedAudit MutationStatus = "DEGRADED_AUDIT"
)

// StockMutation is the two-phase outcome of SetStock/AddStock.
type StockMutation struct {
	Status MutationStatus `json:"status"`
	Entry  LogEntry       `json:"entry"`
}

// NewLogID allocates a ledger entry identifier: 8 hex characters, uppercased.
func NewLogID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
