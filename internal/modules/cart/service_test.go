package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetpos/internal/apperr"
	"sheetpos/internal/modules/catalog"
	"sheetpos/internal/sheetstore"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	ctx := context.Background()
	store := sheetstore.NewMemoryStore()
	require.NoError(t, sheetstore.Bootstrap(ctx, store))
	require.NoError(t, store.AppendRows(ctx, sheetstore.SheetProducts, [][]interface{}{
		{"P1", "Tea", "2.50", "10", "Drinks", "", "", "", "1"},
		{"P2", "Coffee", "3.00", "2", "Drinks", "", "", "", "1"},
	}))
	cache := catalog.NewCache(catalog.NewSheetsRepository(store), 10*time.Second)
	return NewService(cache)
}

func TestAddMergesExistingLine(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	c, err := svc.Add(ctx, Cart{}, "P1", 3)
	require.NoError(t, err)
	c, err = svc.Add(ctx, c, "P1", 2)
	require.NoError(t, err)

	require.Len(t, c, 1, "one line per product")
	assert.Equal(t, 5, c[0].Quantity)
	assert.Equal(t, 12.5, c[0].TotalPrice)
}

func TestAddRejectsInsufficientStock(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Add(ctx, Cart{}, "P2", 3)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	// Merged quantity is checked too.
	c, err := svc.Add(ctx, Cart{}, "P2", 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, c, "P2", 1)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestAddQuantityBounds(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Add(ctx, Cart{}, "P1", 0)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	_, err = svc.Add(ctx, Cart{}, "P1", 101)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestAddUnknownProduct(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Add(ctx, Cart{}, "NOPE", 1)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestUpdateToZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	c, err := svc.Add(ctx, Cart{}, "P1", 3)
	require.NoError(t, err)
	c, err = svc.Update(ctx, c, "P1", 0)
	require.NoError(t, err)

	assert.Empty(t, c)
}

func TestUpdateRefreshesSnapshotFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	c := Cart{{ProductID: "P1", Name: "Stale Name", UnitPrice: 99, Quantity: 1, TotalPrice: 99}}
	c, err := svc.Update(ctx, c, "P1", 4)
	require.NoError(t, err)

	assert.Equal(t, "Tea", c[0].Name)
	assert.Equal(t, 2.5, c[0].UnitPrice)
	assert.Equal(t, 10.0, c[0].TotalPrice)
}

func TestUpdateMissingLine(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Update(ctx, Cart{}, "P1", 2)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	c, err := svc.Add(ctx, Cart{}, "P1", 1)
	require.NoError(t, err)
	c = svc.Remove(c, "P1")
	assert.Empty(t, c)
	assert.Empty(t, svc.Remove(c, "P1"))
}

func TestSanitizeDropsMalformedLines(t *testing.T) {
	c := Sanitize(Cart{
		{ProductID: "P1", UnitPrice: 2, Quantity: 3, TotalPrice: 0},
		{ProductID: "", UnitPrice: 1, Quantity: 1},
		{ProductID: "P2", UnitPrice: 1, Quantity: 0},
		{ProductID: "P3", UnitPrice: 1, Quantity: -4},
	})

	require.Len(t, c, 1)
	assert.Equal(t, "P1", c[0].ProductID)
	assert.Equal(t, 6.0, c[0].TotalPrice, "totals recomputed on load")
}

func TestSubtotal(t *testing.T) {
	c := Cart{
		{ProductID: "P1", TotalPrice: 10.005},
		{ProductID: "P2", TotalPrice: 5.0},
	}
	assert.Equal(t, 15.01, c.Subtotal())
}
