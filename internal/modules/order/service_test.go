package order

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sheetpos/internal/apperr"
	"sheetpos/internal/keylock"
	"sheetpos/internal/modules/cart"
	"sheetpos/internal/modules/catalog"
	"sheetpos/internal/modules/inventory"
	"sheetpos/internal/sheetstore"
)

type engineFixture struct {
	store  sheetstore.RowStore
	cache  *catalog.Cache
	ledger inventory.Repository
	svc    Service
}

func newFixture(t *testing.T, store sheetstore.RowStore, products ...[]interface{}) *engineFixture {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, sheetstore.Bootstrap(ctx, store))
	if len(products) > 0 {
		require.NoError(t, store.AppendRows(ctx, sheetstore.SheetProducts, products))
	}
	cache := catalog.NewCache(catalog.NewSheetsRepository(store), 10*time.Second)
	ledger := inventory.NewSheetsRepository(store)
	svc := NewService(NewSheetsRepository(store), ledger, cache, keylock.New(), zap.NewNop())
	return &engineFixture{store: store, cache: cache, ledger: ledger, svc: svc}
}

func (f *engineFixture) stockOf(t *testing.T, productID string) int {
	t.Helper()
	products, err := f.cache.Products(context.Background(), true)
	require.NoError(t, err)
	for _, p := range products {
		if p.ID == productID {
			return p.Stock
		}
	}
	t.Fatalf("product %s not found", productID)
	return 0
}

func (f *engineFixture) orderCount(t *testing.T) int {
	t.Helper()
	rows, err := f.store.ReadAllRows(context.Background(), sheetstore.SheetOrders)
	require.NoError(t, err)
	return len(rows) - 1
}

func lineFor(id, name string, price float64, qty int) cart.Line {
	return cart.Line{
		ProductID:  id,
		Name:       name,
		UnitPrice:  price,
		Quantity:   qty,
		TotalPrice: cart.Round2(price * float64(qty)),
	}
}

func TestCheckoutTotalsAndCashPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, sheetstore.NewMemoryStore(),
		[]interface{}{"P1", "Tea", "25.00", "10", "Drinks", "", "", "", "10"},
	)
	c := cart.Cart{lineFor("P1", "Tea", 25, 4)} // subtotal 100.00
	req := CheckoutRequest{
		Discount:       10,
		DeliveryFee:    5,
		PaymentMethod:  "cash",
		AmountReceived: 90,
	}

	_, err := f.svc.Checkout(ctx, c, req)
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "insufficient payment")
	assert.Equal(t, 0, f.orderCount(t), "rejected checkout writes nothing")

	req.AmountReceived = 100
	result, err := f.svc.Checkout(ctx, c, req)
	require.NoError(t, err)
	require.Equal(t, CheckoutCompleted, result.Status)

	o := result.Order
	assert.Equal(t, 100.0, o.Subtotal)
	assert.Equal(t, 95.0, o.TotalAmount)
	assert.Equal(t, 5.0, o.Change)
	assert.Equal(t, PaymentCash, o.PaymentMethod)
	assert.Equal(t, "Walk-in Customer", o.CustomerName)
	assert.True(t, strings.HasPrefix(o.OrderID, "ORD-"))
	assert.Equal(t, 1, f.orderCount(t))
}

func TestCheckoutInsufficientStockPerformsZeroWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, sheetstore.NewMemoryStore(),
		[]interface{}{"P1", "Tea", "2.00", "2", "Drinks", "", "", "", "1"},
	)
	c := cart.Cart{lineFor("P1", "Tea", 2, 3)}

	_, err := f.svc.Checkout(ctx, c, CheckoutRequest{PaymentMethod: "Card"})
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	assert.Equal(t, 0, f.orderCount(t))
	assert.Equal(t, 2, f.stockOf(t, "P1"), "stock untouched")
	entries, err := f.ledger.Log(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTwoSequentialCheckoutsDeductAndAudit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, sheetstore.NewMemoryStore(),
		[]interface{}{"P1", "Tea", "2.00", "10", "Drinks", "", "", "", "1"},
	)

	for i := 0; i < 2; i++ {
		c := cart.Cart{lineFor("P1", "Tea", 2, 4)}
		result, err := f.svc.Checkout(ctx, c, CheckoutRequest{PaymentMethod: "Card"})
		require.NoError(t, err)
		require.Equal(t, CheckoutCompleted, result.Status)
	}

	assert.Equal(t, 2, f.stockOf(t, "P1"))

	entries, err := f.ledger.Log(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 6, entries[0].NewStock)
	assert.Equal(t, 2, entries[1].NewStock)
	assert.Equal(t, -4, entries[0].QuantityChange)
	assert.Equal(t, inventory.ActionUpdate, entries[0].Action)
	assert.Contains(t, entries[0].Reason, "Order ORD-")
}

func TestCheckoutInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, sheetstore.NewMemoryStore(),
		[]interface{}{"P1", "Tea", "2.00", "10", "Drinks", "", "", "", "1"},
	)

	// Warm the cache, then check a plain TTL read sees the new stock.
	_, err := f.cache.Products(ctx, false)
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, cart.Cart{lineFor("P1", "Tea", 2, 4)}, CheckoutRequest{PaymentMethod: "Digital"})
	require.NoError(t, err)

	products, err := f.cache.Products(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 6, products[0].Stock)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t, sheetstore.NewMemoryStore())

	_, err := f.svc.Checkout(context.Background(), cart.Cart{}, CheckoutRequest{})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	// Carts that sanitize down to nothing count as empty too.
	_, err = f.svc.Checkout(context.Background(), cart.Cart{{ProductID: "", Quantity: 2}}, CheckoutRequest{})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestCheckoutVanishedProduct(t *testing.T) {
	f := newFixture(t, sheetstore.NewMemoryStore(),
		[]interface{}{"P1", "Tea", "2.00", "10", "Drinks", "", "", "", "1"},
	)

	_, err := f.svc.Checkout(context.Background(), cart.Cart{lineFor("GONE", "Ghost", 1, 1)}, CheckoutRequest{})
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "no longer exists")
}

func TestCheckoutNormalization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, sheetstore.NewMemoryStore(),
		[]interface{}{"P1", "Tea", "2.00", "10", "Drinks", "", "", "", "1"},
	)
	req := CheckoutRequest{
		PaymentMethod: "bitcoin", // unknown → Cash
		Discount:      -5,        // clamps to 0
		DeliveryFee:   -3,
		// Cash needs to cover the total.
		AmountReceived: 8,
	}
	result, err := f.svc.Checkout(ctx, cart.Cart{lineFor("P1", "Tea", 2, 4)}, req)
	require.NoError(t, err)

	assert.Equal(t, PaymentCash, result.Order.PaymentMethod)
	assert.Equal(t, 0.0, result.Order.DiscountAmount)
	assert.Equal(t, 0.0, result.Order.DeliveryFee)
	assert.Equal(t, 8.0, result.Order.TotalAmount)
}

func TestCheckoutExcessiveDiscountFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, sheetstore.NewMemoryStore(),
		[]interface{}{"P1", "Tea", "2.00", "10", "Drinks", "", "", "", "1"},
	)
	result, err := f.svc.Checkout(ctx, cart.Cart{lineFor("P1", "Tea", 2, 1)},
		CheckoutRequest{Discount: 50, PaymentMethod: "Card"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Order.TotalAmount)
}

// deductionFailingStore lets the order append through but fails the batched
// stock write, simulating a store failure mid-checkout.
type deductionFailingStore struct {
	*sheetstore.MemoryStore
}

func (s *deductionFailingStore) BatchUpdateCells(ctx context.Context, sheet string, updates []sheetstore.CellUpdate) error {
	if sheet == sheetstore.SheetProducts {
		return errors.New("store unreachable")
	}
	return s.MemoryStore.BatchUpdateCells(ctx, sheet, updates)
}

func TestCheckoutDegradesWhenStockWriteFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &deductionFailingStore{sheetstore.NewMemoryStore()},
		[]interface{}{"P1", "Tea", "2.00", "10", "Drinks", "", "", "", "1"},
	)

	result, err := f.svc.Checkout(ctx, cart.Cart{lineFor("P1", "Tea", 2, 4)},
		CheckoutRequest{PaymentMethod: "Card"})
	require.NoError(t, err)

	assert.Equal(t, CheckoutDegradedInventory, result.Status)
	assert.Equal(t, 1, f.orderCount(t), "order stays persisted on the degraded path")
}

func TestGetOrdersNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	store := sheetstore.NewMemoryStore()
	f := newFixture(t, store)

	repo := NewSheetsRepository(store)
	dates := []string{"2026-08-20 09:00:00", "2026-08-26T10:00:00Z", "not-a-date", "2026-08-24"}
	for i, d := range dates {
		require.NoError(t, repo.AppendOrder(ctx, &Order{
			OrderID:   generateOrderID() + string(rune('A'+i)),
			OrderDate: d,
			Status:    "Completed",
		}))
	}

	orders, err := f.svc.GetOrders(ctx, 3)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "2026-08-26T10:00:00Z", orders[0].OrderDate)
	assert.Equal(t, "2026-08-24", orders[1].OrderDate)
	assert.Equal(t, "2026-08-20 09:00:00", orders[2].OrderDate)
}

func TestOrderItemsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := sheetstore.NewMemoryStore()
	f := newFixture(t, store,
		[]interface{}{"P1", "Tea", "2.50", "10", "Drinks", "", "", "", "1"},
	)

	result, err := f.svc.Checkout(ctx, cart.Cart{lineFor("P1", "Tea", 2.5, 2)},
		CheckoutRequest{PaymentMethod: "Card", CustomerName: "Ada"})
	require.NoError(t, err)

	orders, err := f.svc.GetOrders(ctx, 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, result.Order.OrderID, orders[0].OrderID)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "P1", orders[0].Items[0].ProductID)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)
}

func TestNormalizePayment(t *testing.T) {
	assert.Equal(t, PaymentCard, NormalizePayment(" CARD "))
	assert.Equal(t, PaymentDigital, NormalizePayment("digital"))
	assert.Equal(t, PaymentCash, NormalizePayment(""))
	assert.Equal(t, PaymentCash, NormalizePayment("cheque"))
}
