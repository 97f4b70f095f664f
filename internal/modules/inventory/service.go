package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sheetpos/internal/apperr"
	"sheetpos/internal/keylock"
	"sheetpos/internal/modules/catalog"
)

// DefaultLowStockThreshold flags products running out.
const DefaultLowStockThreshold = 10

// Service defines the inventory business logic: the two admin stock
// mutations, the ledger read, and the low-stock report.
type Service interface {
	// SetStock overwrites a product's stock level and records the change.
	SetStock(ctx context.Context, productID string, newStock int, reason string) (*StockMutation, error)

	// AddStock adds delta units to a product's stock and records the change.
	AddStock(ctx context.Context, productID string, delta int, reason string) (*StockMutation, error)

	// Log returns the ledger tail, up to limit entries.
	Log(ctx context.Context, limit int) ([]LogEntry, error)

	// LowStock returns products at or below the threshold.
	LowStock(ctx context.Context, threshold int) ([]catalog.Product, error)
}

type service struct {
	repo  Repository
	cache *catalog.Cache
	locks *keylock.KeyLock
	log   *zap.Logger
}

// NewService creates a new inventory service. The keyed lock set is shared
// with the checkout engine so admin mutations and checkouts for the same
// product never interleave.
func NewService(repo Repository, cache *catalog.Cache, locks *keylock.KeyLock, log *zap.Logger) Service {
	return &service{repo: repo, cache: cache, locks: locks, log: log}
}

func (s *service) SetStock(ctx context.Context, productID string, newStock int, reason string) (*StockMutation, error) {
	if newStock < 0 {
		return nil, apperr.Validationf("stock cannot be negative")
	}
	return s.mutate(ctx, productID, reason, ActionUpdate, func(prev int) int { return newStock })
}

func (s *service) AddStock(ctx context.Context, productID string, delta int, reason string) (*StockMutation, error) {
	if delta <= 0 {
		return nil, apperr.Validationf("quantity to add must be positive")
	}
	return s.mutate(ctx, productID, reason, ActionAddStock, func(prev int) int { return prev + delta })
}

// mutate runs the shared check-then-write sequence under the product's lock:
// fresh read, compute the new level, one batched cell write, one ledger
// append, cache invalidation.
func (s *service) mutate(ctx context.Context, productID, reason string, action Action, next func(prev int) int) (*StockMutation, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, apperr.Validationf("product_id is required")
	}

	s.locks.Lock(productID)
	defer s.locks.Unlock(productID)

	products, err := s.cache.Products(ctx, true)
	if err != nil {
		return nil, apperr.Dependencyf(err, "product catalog unavailable")
	}
	var prev int
	found := false
	for _, p := range products {
		if p.ID == productID {
			prev = p.Stock
			found = true
			break
		}
	}
	if !found {
		return nil, apperr.NotFoundf("product %s not found", productID)
	}

	newStock := next(prev)
	if newStock < 0 {
		newStock = 0
	}

	if err := s.repo.WriteStock(ctx, []StockWrite{{ProductID: productID, NewStock: newStock}}); err != nil {
		return nil, apperr.Dependencyf(err, "could not update stock")
	}

	entry := LogEntry{
		ID:             NewLogID(),
		ProductID:      productID,
		Action:         action,
		QuantityChange: newStock - prev,
		PreviousStock:  prev,
		NewStock:       newStock,
		Date:           time.Now().UTC().Format(time.RFC3339),
		Reason:         strings.TrimSpace(reason),
	}
	// The stock cell already moved; an append failure degrades the result
	// instead of failing it, so callers see the change landed but the audit
	// row is missing.
	status := MutationCompleted
	if err := s.repo.Append(ctx, []LogEntry{entry}); err != nil {
		s.log.Error("stock changed but ledger append failed",
			zap.String("product_id", productID), zap.Error(err))
		status = MutationDegradedAudit
	}

	s.cache.Invalidate()
	s.log.Info("stock mutated",
		zap.String("product_id", productID),
		zap.String("action", string(action)),
		zap.String("status", string(status)),
		zap.Int("previous_stock", prev),
		zap.Int("new_stock", newStock))
	return &StockMutation{Status: status, Entry: entry}, nil
}

func (s *service) Log(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	entries, err := s.repo.Log(ctx, limit)
	if err != nil {
		return nil, apperr.Dependencyf(fmt.Errorf("read ledger: %w", err), "inventory log unavailable")
	}
	return entries, nil
}

func (s *service) LowStock(ctx context.Context, threshold int) ([]catalog.Product, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	products, err := s.cache.Products(ctx, false)
	if err != nil {
		return nil, apperr.Dependencyf(err, "product catalog unavailable")
	}
	low := make([]catalog.Product, 0)
	for _, p := range products {
		if p.Stock <= threshold {
			low = append(low, p)
		}
	}
	return low, nil
}
