package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sheetpos/internal/apperr"
	"sheetpos/internal/sheetstore"
)

func seededStore(t *testing.T, rows ...[]interface{}) *sheetstore.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := sheetstore.NewMemoryStore()
	require.NoError(t, sheetstore.Bootstrap(ctx, store))
	if len(rows) > 0 {
		require.NoError(t, store.AppendRows(ctx, sheetstore.SheetProducts, rows))
	}
	return store
}

func newTestService(t *testing.T, store sheetstore.RowStore) (Service, *Cache) {
	t.Helper()
	repo := NewSheetsRepository(store)
	cache := NewCache(repo, 10*time.Second)
	return NewService(cache, repo, zap.NewNop()), cache
}

func TestSheetsRepositoryDiscardsMalformedRows(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t,
		[]interface{}{"P1", "Tea", "2.50", "10", "Drinks", "", "", "", "1.00"},
		[]interface{}{"", "No ID", "1", "1", "", "", "", "", ""},
		[]interface{}{"P3", "", "1", "1", "", "", "", "", ""},
		[]interface{}{"P4", "Bad numbers", "oops", "-2", "", "", "", "", "x"},
	)

	products, err := NewSheetsRepository(store).All(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "P1", products[0].ID)
	assert.Equal(t, 2.50, products[0].Price)
	assert.Equal(t, "Drinks", products[0].Category)

	// Malformed numerics coerce to zero, negative stock clamps, category defaults.
	assert.Equal(t, "P4", products[1].ID)
	assert.Equal(t, 0.0, products[1].Price)
	assert.Equal(t, 0, products[1].Stock)
	assert.Equal(t, "General", products[1].Category)
}

func TestServiceGet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, seededStore(t,
		[]interface{}{"P1", "Tea", "2.50", "10", "Drinks", "", "", "", "1.00"},
	))

	p, err := svc.Get(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "Tea", p.Name)

	_, err = svc.Get(ctx, "NOPE")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestServiceSearchAndCategories(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, seededStore(t,
		[]interface{}{"P1", "Green Tea", "2.50", "10", "Drinks", "loose leaf", "", "", "1"},
		[]interface{}{"P2", "Coffee", "3.00", "8", "Drinks", "", "", "", "1"},
		[]interface{}{"P3", "Notebook", "1.20", "50", "Stationery", "", "", "", "0.4"},
	))

	hits, err := svc.Search(ctx, "tea")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "P1", hits[0].ID)

	byCat, err := svc.ByCategory(ctx, "drinks")
	require.NoError(t, err)
	assert.Len(t, byCat, 2)

	counts, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Drinks": 2, "Stationery": 1}, counts)
}

func TestServiceAddInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	svc, cache := newTestService(t, store)

	before, err := cache.Products(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, before)

	p, err := svc.Add(ctx, AddProductRequest{Name: "Tea", Price: 2.5, Stock: 10, ImportPrice: 1})
	require.NoError(t, err)
	assert.Len(t, p.ID, 8)
	assert.Equal(t, "General", p.Category)

	after, err := cache.Products(ctx, false)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, p.ID, after[0].ID)
}

func TestServiceAddValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, seededStore(t))

	_, err := svc.Add(ctx, AddProductRequest{Name: "  "})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = svc.Add(ctx, AddProductRequest{Name: "Tea", Price: -1})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestServiceUpdatePartial(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t,
		[]interface{}{"P1", "Tea", "2.50", "10", "Drinks", "", "", "", "1.00"},
	)
	svc, _ := newTestService(t, store)

	newPrice := 2.75
	p, err := svc.Update(ctx, "P1", UpdateProductRequest{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, 2.75, p.Price)
	assert.Equal(t, "Tea", p.Name, "unset fields stay untouched")
	assert.NotEmpty(t, p.UpdatedAt)
}

// failingRepo simulates an unreachable store.
type failingRepo struct{}

func (failingRepo) All(context.Context) ([]Product, error) {
	return nil, errors.New("store unreachable")
}
func (failingRepo) Append(context.Context, *Product) error { return errors.New("store unreachable") }
func (failingRepo) UpdateFields(context.Context, string, UpdateProductRequest) error {
	return errors.New("store unreachable")
}

func TestListDegradesToEmptyOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(failingRepo{}, time.Second)
	svc := NewService(cache, failingRepo{}, zap.NewNop())

	products, err := svc.List(ctx, false)
	require.NoError(t, err, "read path degrades instead of failing")
	assert.Empty(t, products)
}
