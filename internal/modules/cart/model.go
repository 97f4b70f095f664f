package cart

import "math"

// MaxLineQuantity bounds any single cart line.
const MaxLineQuantity = 100

// Line is one product in a cart. Name and UnitPrice are snapshots of the
// catalog at the time of the last mutation; TotalPrice is always derived.
type Line struct {
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

// Cart is an ordered sequence of lines, at most one per product.
type Cart []Line

// Subtotal sums all line totals, rounded to cents.
func (c Cart) Subtotal() float64 {
	var sum float64
	for _, l := range c {
		sum += l.TotalPrice
	}
	return Round2(sum)
}

// Find returns the index of the line for a product, or -1.
func (c Cart) Find(productID string) int {
	for i, l := range c {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Sanitize drops malformed lines (blank product, non-positive quantity) and
// recomputes every total. Stored carts pass through here on every load so a
// corrupted session value degrades silently instead of erroring.
func Sanitize(c Cart) Cart {
	out := make(Cart, 0, len(c))
	for _, l := range c {
		if l.ProductID == "" || l.Quantity <= 0 {
			continue
		}
		l.TotalPrice = Round2(l.UnitPrice * float64(l.Quantity))
		out = append(out, l)
	}
	return out
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
