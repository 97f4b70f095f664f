package order

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetpos/internal/modules/cart"
	"sheetpos/internal/sheetstore"
)

// Concurrent checkouts for the same product must serialize on the keyed lock:
// with 10 in stock and two buyers wanting 6, exactly one succeeds.
func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, sheetstore.NewMemoryStore(),
		[]interface{}{"P1", "Tea", "2.00", "10", "Drinks", "", "", "", "1"},
	)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := cart.Cart{lineFor("P1", "Tea", 2, 6)}
			_, results[i] = f.svc.Checkout(ctx, c, CheckoutRequest{PaymentMethod: "Card"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one of the overlapping checkouts may win")
	assert.Equal(t, 4, f.stockOf(t, "P1"))
	assert.Equal(t, 1, f.orderCount(t))
}

// Many small checkouts against one product: stock walks down to zero and
// never past it, and the ledger mirrors every step.
func TestCheckoutStampedeStaysNonNegative(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, sheetstore.NewMemoryStore(),
		[]interface{}{"P1", "Tea", "1.00", "5", "Drinks", "", "", "", "1"},
	)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := cart.Cart{lineFor("P1", "Tea", 1, 1)}
			_, _ = f.svc.Checkout(ctx, c, CheckoutRequest{PaymentMethod: "Card"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, f.stockOf(t, "P1"))
	require.Equal(t, 5, f.orderCount(t), "only five units existed")
	entries, err := f.ledger.Log(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
	for _, e := range entries {
		assert.GreaterOrEqual(t, e.NewStock, 0)
	}
}
