package order

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"sheetpos/internal/apperr"
	"sheetpos/internal/keylock"
	"sheetpos/internal/modules/cart"
	"sheetpos/internal/modules/catalog"
	"sheetpos/internal/modules/inventory"
)

// Service is the order fulfillment engine: the only writer of order rows and
// the only order-driven mutator of product stock.
type Service interface {
	// Checkout validates the cart against fresh stock, persists the order,
	// and issues one batched stock deduction plus one batched ledger append.
	Checkout(ctx context.Context, c cart.Cart, req CheckoutRequest) (*CheckoutResult, error)

	// GetOrders lists persisted orders newest-first. limit <= 0 means 50.
	GetOrders(ctx context.Context, limit int) ([]Order, error)
}

type service struct {
	repo   Repository
	ledger inventory.Repository
	cache  *catalog.Cache
	locks  *keylock.KeyLock
	log    *zap.Logger
}

// NewService creates the fulfillment engine. The keyed lock set is shared
// with the inventory admin operations.
func NewService(repo Repository, ledger inventory.Repository, cache *catalog.Cache, locks *keylock.KeyLock, log *zap.Logger) Service {
	return &service{repo: repo, ledger: ledger, cache: cache, locks: locks, log: log}
}

func (s *service) Checkout(ctx context.Context, c cart.Cart, req CheckoutRequest) (*CheckoutResult, error) {
	c = cart.Sanitize(c)
	if len(c) == 0 {
		return nil, apperr.Validationf("cart is empty")
	}

	// ── Normalize the request ──────────────────────────────────────────────
	payment := NormalizePayment(req.PaymentMethod)
	discount := req.Discount
	if discount < 0 {
		discount = 0
	}
	delivery := req.DeliveryFee
	if delivery < 0 {
		delivery = 0
	}
	received := req.AmountReceived
	if received < 0 {
		received = 0
	}
	customer := strings.TrimSpace(req.CustomerName)
	if customer == "" {
		customer = "Walk-in Customer"
	}

	// Serialize the check-then-decrement sequence per product within this
	// process. Instances sharing the spreadsheet still race; the fresh read
	// below narrows that window, it does not close it.
	ids := make([]string, 0, len(c))
	for _, l := range c {
		ids = append(ids, l.ProductID)
	}
	release := s.locks.LockAll(ids)
	defer release()

	// ── Validate against fresh stock ───────────────────────────────────────
	// Staleness here directly risks overselling, so bypass the TTL.
	products, err := s.cache.Products(ctx, true)
	if err != nil {
		return nil, apperr.Dependencyf(err, "product catalog unavailable")
	}
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var subtotal float64
	for _, l := range c {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, apperr.NotFoundf("product %s no longer exists", l.ProductID)
		}
		if p.Stock < l.Quantity {
			return nil, apperr.Conflictf("insufficient stock for %s: %d available", p.Name, p.Stock)
		}
		subtotal += l.TotalPrice
	}
	subtotal = cart.Round2(subtotal)

	total := cart.Round2(subtotal - discount + delivery)
	if total < 0 {
		total = 0
	}
	var change float64
	if payment == PaymentCash {
		if received < total {
			return nil, apperr.Conflictf("insufficient payment: received %.2f of %.2f", received, total)
		}
		change = cart.Round2(received - total)
	}

	// ── Persist the order ──────────────────────────────────────────────────
	// Nothing has been written up to here; a failure below leaves no state.
	o := &Order{
		OrderID:         generateOrderID(),
		CustomerName:    customer,
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		Items:           append(cart.Cart(nil), c...),
		Subtotal:        subtotal,
		DiscountAmount:  cart.Round2(discount),
		DeliveryFee:     cart.Round2(delivery),
		TotalAmount:     total,
		Status:          "Completed",
		PaymentMethod:   payment,
		AmountReceived:  received,
		Change:          change,
		OrderDate:       time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.repo.AppendOrder(ctx, o); err != nil {
		// The order was never recorded, so stock must not move either.
		return nil, apperr.Dependencyf(err, "could not record order")
	}

	// ── Deduct stock ───────────────────────────────────────────────────────
	// The aggregator guarantees one line per product, but summing per ID
	// keeps the deduction correct if that invariant ever loosens.
	quantities := make(map[string]int, len(c))
	productIDs := make([]string, 0, len(c))
	for _, l := range c {
		if _, seen := quantities[l.ProductID]; !seen {
			productIDs = append(productIDs, l.ProductID)
		}
		quantities[l.ProductID] += l.Quantity
	}

	now := time.Now().UTC().Format(time.RFC3339)
	writes := make([]inventory.StockWrite, 0, len(productIDs))
	entries := make([]inventory.LogEntry, 0, len(productIDs))
	for _, id := range productIDs {
		prev := byID[id].Stock
		newStock := prev - quantities[id]
		if newStock < 0 {
			newStock = 0
		}
		writes = append(writes, inventory.StockWrite{ProductID: id, NewStock: newStock})
		entries = append(entries, inventory.LogEntry{
			ID:             inventory.NewLogID(),
			ProductID:      id,
			Action:         inventory.ActionUpdate,
			QuantityChange: newStock - prev,
			PreviousStock:  prev,
			NewStock:       newStock,
			Date:           now,
			Reason:         "Order " + o.OrderID,
		})
	}

	// One batched cell write, then one batched append. The store has no
	// transactions: if either fails now the order row already exists, so the
	// result degrades instead of failing and operators reconcile from it.
	status := CheckoutCompleted
	if err := s.ledger.WriteStock(ctx, writes); err != nil {
		s.log.Error("order recorded but stock deduction failed",
			zap.String("order_id", o.OrderID), zap.Error(err))
		status = CheckoutDegradedInventory
	} else if err := s.ledger.Append(ctx, entries); err != nil {
		s.log.Error("order recorded but ledger append failed",
			zap.String("order_id", o.OrderID), zap.Error(err))
		status = CheckoutDegradedInventory
	}

	s.cache.Invalidate()
	s.log.Info("checkout finished",
		zap.String("order_id", o.OrderID),
		zap.String("status", string(status)),
		zap.Float64("total", o.TotalAmount),
		zap.Int("lines", len(c)))
	return &CheckoutResult{Status: status, Order: o}, nil
}

func (s *service) GetOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	orders, err := s.repo.ListOrders(ctx, limit)
	if err != nil {
		return nil, apperr.Dependencyf(err, "order history unavailable")
	}
	return orders, nil
}
