// Package analytics aggregates sales and inventory figures for the admin
// dashboard. It only reads: orders through the order repository, products
// through the catalog cache.
package analytics

import (
	"context"
	"time"

	"sheetpos/internal/apperr"
	"sheetpos/internal/modules/cart"
	"sheetpos/internal/modules/catalog"
	"sheetpos/internal/modules/inventory"
	"sheetpos/internal/modules/order"
)

// Summary is the dashboard payload.
type Summary struct {
	TotalOrders   int     `json:"total_orders"`
	OrdersToday   int     `json:"orders_today"`
	OrdersWeek    int     `json:"orders_week"`
	RevenueTotal  float64 `json:"revenue_total"`
	RevenueToday  float64 `json:"revenue_today"`
	RevenueWeek   float64 `json:"revenue_week"`
	AvgOrderValue float64 `json:"avg_order_value"`

	TotalProducts       int               `json:"total_products"`
	TotalStockUnits     int               `json:"total_stock_units"`
	InventoryInvestment float64           `json:"inventory_investment"`
	LowStockCount       int               `json:"low_stock_count"`
	LowStockProducts    []catalog.Product `json:"low_stock_products"`
}

// Service computes the dashboard summary.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	orders order.Repository
	cache  *catalog.Cache
	now    func() time.Time
}

// NewService creates a new analytics service.
func NewService(orders order.Repository, cache *catalog.Cache) Service {
	return &service{orders: orders, cache: cache, now: time.Now}
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	orders, err := s.orders.ListOrders(ctx, 0)
	if err != nil {
		return nil, apperr.Dependencyf(err, "order history unavailable")
	}
	products, err := s.cache.Products(ctx, false)
	if err != nil {
		return nil, apperr.Dependencyf(err, "product catalog unavailable")
	}

	now := s.now().UTC()
	today := now.Truncate(24 * time.Hour)
	weekAgo := now.AddDate(0, 0, -7)

	sum := &Summary{LowStockProducts: []catalog.Product{}}
	for _, o := range orders {
		sum.TotalOrders++
		sum.RevenueTotal += o.TotalAmount
		// Orders with unreadable dates still count toward the totals; they
		// just cannot land in a time bucket.
		t, err := order.ParseOrderDate(o.OrderDate)
		if err != nil {
			continue
		}
		if !t.Before(today) {
			sum.OrdersToday++
			sum.RevenueToday += o.TotalAmount
		}
		if !t.Before(weekAgo) {
			sum.OrdersWeek++
			sum.RevenueWeek += o.TotalAmount
		}
	}
	sum.RevenueTotal = cart.Round2(sum.RevenueTotal)
	sum.RevenueToday = cart.Round2(sum.RevenueToday)
	sum.RevenueWeek = cart.Round2(sum.RevenueWeek)
	if sum.TotalOrders > 0 {
		sum.AvgOrderValue = cart.Round2(sum.RevenueTotal / float64(sum.TotalOrders))
	}

	var investment float64
	for _, p := range products {
		sum.TotalProducts++
		sum.TotalStockUnits += p.Stock
		investment += float64(p.Stock) * p.ImportPrice
		if p.Stock <= inventory.DefaultLowStockThreshold {
			sum.LowStockProducts = append(sum.LowStockProducts, p)
		}
	}
	sum.InventoryInvestment = cart.Round2(investment)
	sum.LowStockCount = len(sum.LowStockProducts)
	return sum, nil
}
