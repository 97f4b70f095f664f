package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetpos/internal/modules/cart"
	"sheetpos/internal/modules/order"
)

func sampleOrder() *order.Order {
	return &order.Order{
		OrderID:        "ORD-20260826-DEADBEEF",
		CustomerName:   "Ada Lovelace",
		Items:          cart.Cart{{ProductID: "P1", Name: "Green Tea", UnitPrice: 2.5, Quantity: 4, TotalPrice: 10}},
		Subtotal:       10,
		DiscountAmount: 1,
		DeliveryFee:    0.5,
		TotalAmount:    9.5,
		PaymentMethod:  order.PaymentCash,
		AmountReceived: 10,
		Change:         0.5,
		OrderDate:      "2026-08-26T10:00:00Z",
	}
}

func TestRenderContainsOrderDetails(t *testing.T) {
	html, err := Render(sampleOrder(), Company{Name: "Corner Shop", Phone: "555-0100"})
	require.NoError(t, err)

	assert.Contains(t, html, "ORD-20260826-DEADBEEF")
	assert.Contains(t, html, "Corner Shop")
	assert.Contains(t, html, "Ada Lovelace")
	assert.Contains(t, html, "Green Tea")
	assert.Contains(t, html, "9.50")
	// Cash block with received and change.
	assert.Contains(t, html, "Received:")
	assert.Contains(t, html, "0.50")
}

func TestRenderEscapesUntrustedFields(t *testing.T) {
	o := sampleOrder()
	o.CustomerName = `<script>alert("x")</script>`

	html, err := Render(o, Company{Name: "Corner Shop"})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRenderOmitsCashBlockForCard(t *testing.T) {
	o := sampleOrder()
	o.PaymentMethod = order.PaymentCard

	html, err := Render(o, Company{Name: "Corner Shop"})
	require.NoError(t, err)
	assert.NotContains(t, html, "Received:")
}

func TestMailerUnconfigured(t *testing.T) {
	m := NewMailer("", "587", "", "")
	assert.False(t, m.Configured())
	assert.Error(t, m.Send(nil, "a@b.c", "s", "m", "<p>h</p>"))
}
