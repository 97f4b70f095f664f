package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sheetpos/internal/modules/cart"
)

// PaymentMethod is how the customer paid. The value is recorded, not
// processed; there is no PSP behind it.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "Cash"
	PaymentCard    PaymentMethod = "Card"
	PaymentDigital PaymentMethod = "Digital"
)

// NormalizePayment maps free-form input onto the enum; anything unknown is
// treated as a cash sale.
func NormalizePayment(s string) PaymentMethod {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "card":
		return PaymentCard
	case "digital":
		return PaymentDigital
	default:
		return PaymentCash
	}
}

// Order is one completed sale. Immutable once persisted; exactly one exists
// per successful checkout.
type Order struct {
	OrderID         string        `json:"order_id"`
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone,omitempty"`
	CustomerAddress string        `json:"customer_address,omitempty"`
	Items           cart.Cart     `json:"items"`
	Subtotal        float64       `json:"subtotal"`
	DiscountAmount  float64       `json:"discount_amount"`
	DeliveryFee     float64       `json:"delivery_fee"`
	TotalAmount     float64       `json:"total_amount"`
	Status          string        `json:"status"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	AmountReceived  float64       `json:"amount_received"`
	Change          float64       `json:"change"`
	OrderDate       string        `json:"order_date"`
}

// CheckoutRequest carries everything a checkout needs besides the cart.
type CheckoutRequest struct {
	CustomerName    string  `json:"customer_name"`
	CustomerPhone   string  `json:"customer_phone"`
	CustomerAddress string  `json:"customer_address"`
	Discount        float64 `json:"discount"`
	DeliveryFee     float64 `json:"delivery_fee"`
	PaymentMethod   string  `json:"payment_method"`
	AmountReceived  float64 `json:"amount_received"`
}

// CheckoutStatus distinguishes a fully consistent checkout from one whose
// order was recorded but whose stock reconciliation failed.
type CheckoutStatus string

const (
	CheckoutCompleted CheckoutStatus = "COMPLETED"
	// CheckoutDegradedInventory: the order row exists but the batched
	// stock/ledger write failed. Operators reconcile from the order record.
	CheckoutDegradedInventory CheckoutStatus = "DEGRADED_INVENTORY"
)

// CheckoutResult is the two-phase outcome of a successful checkout.
type CheckoutResult struct {
	Status CheckoutStatus `json:"status"`
	Order  *Order         `json:"order"`
}

// generateOrderID creates a human-readable order identifier: ORD-YYYYMMDD-XXXXXXXX.
func generateOrderID() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", date, suffix)
}

// orderDateLayouts are the formats that appear in spreadsheets that predate
// this service, newest convention first.
var orderDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// ParseOrderDate parses a stored order date, trying each known layout.
func ParseOrderDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized order date %q", s)
}
