package cart

import (
	"context"
	"fmt"

	"sheetpos/internal/apperr"
	"sheetpos/internal/modules/catalog"
)

// Service is the cart aggregator. Carts are caller-owned values — the
// aggregator validates and transforms them but never stores them; the HTTP
// layer persists the result back into the session.
type Service interface {
	// Add puts qty of a product into the cart, merging with an existing
	// line. The merged quantity must fit the product's current stock.
	Add(ctx context.Context, c Cart, productID string, qty int) (Cart, error)

	// Update resets a line's quantity; qty <= 0 removes the line.
	Update(ctx context.Context, c Cart, productID string, qty int) (Cart, error)

	// Remove drops a line if present.
	Remove(c Cart, productID string) Cart
}

type service struct {
	cache *catalog.Cache
}

// NewService creates a new cart aggregator reading stock through the catalog cache.
func NewService(cache *catalog.Cache) Service {
	return &service{cache: cache}
}

func (s *service) Add(ctx context.Context, c Cart, productID string, qty int) (Cart, error) {
	if qty < 1 || qty > MaxLineQuantity {
		return c, apperr.Validationf("quantity must be between 1 and %d", MaxLineQuantity)
	}
	p, err := s.lookup(ctx, productID)
	if err != nil {
		return c, err
	}

	c = Sanitize(c)
	requested := qty
	if i := c.Find(productID); i >= 0 {
		requested += c[i].Quantity
	}
	if requested > MaxLineQuantity {
		return c, apperr.Validationf("cannot hold more than %d of one product", MaxLineQuantity)
	}
	if requested > p.Stock {
		return c, apperr.Conflictf("insufficient stock for %s: %d available", p.Name, p.Stock)
	}

	line := Line{
		ProductID:  p.ID,
		Name:       p.Name,
		UnitPrice:  p.Price,
		Quantity:   requested,
		TotalPrice: Round2(p.Price * float64(requested)),
	}
	if i := c.Find(productID); i >= 0 {
		c[i] = line
		return c, nil
	}
	return append(c, line), nil
}

func (s *service) Update(ctx context.Context, c Cart, productID string, qty int) (Cart, error) {
	c = Sanitize(c)
	i := c.Find(productID)
	if i < 0 {
		return c, apperr.NotFoundf("product %s is not in the cart", productID)
	}
	if qty <= 0 {
		return append(c[:i], c[i+1:]...), nil
	}
	if qty > MaxLineQuantity {
		return c, apperr.Validationf("quantity must be between 1 and %d", MaxLineQuantity)
	}

	p, err := s.lookup(ctx, productID)
	if err != nil {
		return c, err
	}
	if qty > p.Stock {
		return c, apperr.Conflictf("insufficient stock for %s: %d available", p.Name, p.Stock)
	}

	c[i].Name = p.Name
	c[i].UnitPrice = p.Price
	c[i].Quantity = qty
	c[i].TotalPrice = Round2(p.Price * float64(qty))
	return c, nil
}

func (s *service) Remove(c Cart, productID string) Cart {
	c = Sanitize(c)
	if i := c.Find(productID); i >= 0 {
		return append(c[:i], c[i+1:]...)
	}
	return c
}

func (s *service) lookup(ctx context.Context, productID string) (*catalog.Product, error) {
	products, err := s.cache.Products(ctx, false)
	if err != nil {
		return nil, apperr.Dependencyf(fmt.Errorf("cart stock check: %w", err), "product catalog unavailable")
	}
	for i := range products {
		if products[i].ID == productID {
			return &products[i], nil
		}
	}
	return nil, apperr.NotFoundf("product %s not found", productID)
}
