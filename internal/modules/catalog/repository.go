package catalog

import "context"

// Repository defines data access for products.
type Repository interface {
	// All reads and parses every product row. Rows missing an ID or a Name
	// are discarded; malformed numeric cells coerce to zero.
	All(ctx context.Context) ([]Product, error)

	// Append persists a new product as one appended row.
	Append(ctx context.Context, p *Product) error

	// UpdateFields applies a partial update to the product's row and always
	// refreshes Updated_At.
	UpdateFields(ctx context.Context, id string, upd UpdateProductRequest) error
}
