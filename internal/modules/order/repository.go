package order

import "context"

// Repository defines data access for orders.
type Repository interface {
	// AppendOrder persists a new order as one appended row.
	AppendOrder(ctx context.Context, o *Order) error

	// ListOrders returns orders newest-first by order date; rows whose date
	// cannot be parsed sort last. limit <= 0 returns everything.
	ListOrders(ctx context.Context, limit int) ([]Order, error)
}
