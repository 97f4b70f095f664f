package inventory

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"sheetpos/internal/sheetstore"
)

type sheetsRepository struct {
	store sheetstore.RowStore
}

// NewSheetsRepository creates an inventory repository over the tabular store.
func NewSheetsRepository(store sheetstore.RowStore) Repository {
	return &sheetsRepository{store: store}
}

func (r *sheetsRepository) Append(ctx context.Context, entries []LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	headers, err := r.store.Headers(ctx, sheetstore.SheetInventoryLog)
	if err != nil {
		return errors.Wrap(err, "read ledger headers")
	}
	idx := sheetstore.HeaderIndex(headers)

	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		if e.ProductID == "" || e.Action == "" {
			return errors.Errorf("ledger entry missing product or action")
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
		set("id", e.ID)
		set("product_id", e.ProductID)
		set("action", string(e.Action))
		set("quantity_change", e.QuantityChange)
		set("previous_stock", e.PreviousStock)
		set("new_stock", e.NewStock)
		set("date", e.Date)
		set("reason", e.Reason)
		rows = append(rows, row)
	}
	if err := r.store.AppendRows(ctx, sheetstore.SheetInventoryLog, rows); err != nil {
		return errors.Wrap(err, "append ledger entries")
	}
	return nil
}

func (r *sheetsRepository) Log(ctx context.Context, limit int) ([]LogEntry, error) {
	rows, err := r.store.ReadAllRows(ctx, sheetstore.SheetInventoryLog)
	if err != nil {
		return nil, errors.Wrap(err, "read ledger")
	}
	if len(rows) < 2 {
		return nil, nil
	}
	idx := sheetstore.HeaderIndex(rows[0])
	data := rows[1:]
	if limit > 0 && len(data) > limit {
		data = data[len(data)-limit:]
	}
	entries := make([]LogEntry, 0, len(data))
	for _, row := range data {
		entries = append(entries, LogEntry{
			ID:             sheetstore.Cell(row, idx["id"]),
			ProductID:      sheetstore.Cell(row, idx["product_id"]),
			Action:         Action(sheetstore.Cell(row, idx["action"])),
			QuantityChange: sheetstore.SafeInt(sheetstore.Cell(row, idx["quantity_change"])),
			PreviousStock:  sheetstore.SafeInt(sheetstore.Cell(row, idx["previous_stock"])),
			NewStock:       sheetstore.SafeInt(sheetstore.Cell(row, idx["new_stock"])),
			Date:           sheetstore.Cell(row, idx["date"]),
			Reason:         sheetstore.Cell(row, idx["reason"]),
		})
	}
	return entries, nil
}

func (r *sheetsRepository) WriteStock(ctx context.Context, writes []StockWrite) error {
	if len(writes) == 0 {
		return nil
	}
	headers, err := r.store.Headers(ctx, sheetstore.SheetProducts)
	if err != nil {
		return errors.Wrap(err, "read product headers")
	}
	idx := sheetstore.HeaderIndex(headers)
	idCol, ok := idx["id"]
	if !ok {
		return errors.New("products worksheet has no ID column")
	}
	stockCol, ok := idx["stock"]
	if !ok {
		return errors.New("products worksheet has no Stock column")
	}

	column, err := r.store.ReadColumn(ctx, sheetstore.SheetProducts, idCol)
	if err != nil {
		return errors.Wrap(err, "read product ID column")
	}
	rowByID := sheetstore.RowLookup(column)

	now := time.Now().UTC().Format(time.RFC3339)
	updates := make([]sheetstore.CellUpdate, 0, 2*len(writes))
	for _, w := range writes {
		rowNum, ok := rowByID[w.ProductID]
		if !ok {
			return errors.Errorf("product %s has no row", w.ProductID)
		}
		updates = append(updates, sheetstore.CellUpdate{Row: rowNum, Col: stockCol, Value: w.NewStock})
		if col, ok := idx["updated_at"]; ok {
			updates = append(updates, sheetstore.CellUpdate{Row: rowNum, Col: col, Value: now})
		}
	}
	if err := r.store.BatchUpdateCells(ctx, sheetstore.SheetProducts, updates); err != nil {
		return errors.Wrapf(err, "write stock for %d products", len(writes))
	}
	return nil
}
