package catalog

import (
	"strings"

	"github.com/google/uuid"
)

// Product is one sellable item. Timestamps are kept as the strings stored in
// the sheet; nothing in the system does arithmetic on them.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	ImportPrice float64 `json:"import_price"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

// AddProductRequest is the admin payload for creating a product. The ID is
// allocated server-side and is immutable afterwards.
type AddProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	ImportPrice float64 `json:"import_price" validate:"gte=0"`
}

// UpdateProductRequest is a partial update; nil fields are left untouched.
// Stock is deliberately absent — stock moves only through the inventory and
// checkout paths so every change lands in the ledger.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	ImportPrice *float64 `json:"import_price,omitempty" validate:"omitempty,gte=0"`
}

// NewProductID allocates an opaque short identifier: first 8 hex characters
// of a UUID, uppercased.
func NewProductID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
