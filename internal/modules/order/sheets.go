package order

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/pkg/errors"

	"sheetpos/internal/modules/cart"
	"sheetpos/internal/sheetstore"
)

type sheetsRepository struct {
	store sheetstore.RowStore
}

// NewSheetsRepository creates an order repository over the tabular store.
func NewSheetsRepository(store sheetstore.RowStore) Repository {
	return &sheetsRepository{store: store}
}

func (r *sheetsRepository) AppendOrder(ctx context.Context, o *Order) error {
	headers, err := r.store.Headers(ctx, sheetstore.SheetOrders)
	if err != nil {
		return errors.Wrap(err, "read order headers")
	}
	idx := sheetstore.HeaderIndex(headers)

	items, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, "serialize order items")
	}

	row := make([]interface{}, len(headers))
	for i := range row {
		row[i] = ""
	}
	set := func(header string, v interface{}) {
		if col, ok := idx[header]; ok {
			row[col-1] = v
		}
	}
	set("order_id", o.OrderID)
	set("customer_name", o.CustomerName)
	set("customer_phone", o.CustomerPhone)
	set("customer_address", o.CustomerAddress)
	set("items", string(items))
	set("subtotal", o.Subtotal)
	set("discount_amount", o.DiscountAmount)
	set("delivery_fee", o.DeliveryFee)
	set("total_amount", o.TotalAmount)
	set("status", o.Status)
	set("order_date", o.OrderDate)
	set("payment_method", string(o.PaymentMethod))
	set("amount_received", o.AmountReceived)

	if err := r.store.AppendRows(ctx, sheetstore.SheetOrders, [][]interface{}{row}); err != nil {
		return errors.Wrap(err, "append order")
	}
	return nil
}

func (r *sheetsRepository) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	rows, err := r.store.ReadAllRows(ctx, sheetstore.SheetOrders)
	if err != nil {
		return nil, errors.Wrap(err, "read orders")
	}
	if len(rows) < 2 {
		return nil, nil
	}
	idx := sheetstore.HeaderIndex(rows[0])

	orders := make([]Order, 0, len(rows)-1)
	for _, row := range rows[1:] {
		o := Order{
			OrderID:         sheetstore.Cell(row, idx["order_id"]),
			CustomerName:    sheetstore.Cell(row, idx["customer_name"]),
			CustomerPhone:   sheetstore.Cell(row, idx["customer_phone"]),
			CustomerAddress: sheetstore.Cell(row, idx["customer_address"]),
			Subtotal:        sheetstore.SafeFloat(sheetstore.Cell(row, idx["subtotal"])),
			DiscountAmount:  sheetstore.SafeFloat(sheetstore.Cell(row, idx["discount_amount"])),
			DeliveryFee:     sheetstore.SafeFloat(sheetstore.Cell(row, idx["delivery_fee"])),
			TotalAmount:     sheetstore.SafeFloat(sheetstore.Cell(row, idx["total_amount"])),
			Status:          sheetstore.Cell(row, idx["status"]),
			OrderDate:       sheetstore.Cell(row, idx["order_date"]),
			PaymentMethod:   PaymentMethod(sheetstore.Cell(row, idx["payment_method"])),
			AmountReceived:  sheetstore.SafeFloat(sheetstore.Cell(row, idx["amount_received"])),
		}
		if o.OrderID == "" {
			continue
		}
		if raw := sheetstore.Cell(row, idx["items"]); raw != "" {
			var items cart.Cart
			if err := json.Unmarshal([]byte(raw), &items); err == nil {
				o.Items = items
			}
		}
		orders = append(orders, o)
	}

	// Newest first; rows with unparseable dates sink to the bottom.
	sort.SliceStable(orders, func(i, j int) bool {
		ti, erri := ParseOrderDate(orders[i].OrderDate)
		tj, errj := ParseOrderDate(orders[j].OrderDate)
		if erri != nil {
			ti = time.Time{}
		}
		if errj != nil {
			tj = time.Time{}
		}
		return ti.After(tj)
	})

	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}
