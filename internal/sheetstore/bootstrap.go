package sheetstore

import (
	"context"

	"github.com/pkg/errors"
)

// Bootstrap makes the store's table layout match what the repositories
// expect: every worksheet exists and every expected column is present.
// Missing columns are appended to existing header rows; data rows are never
// touched, so re-running against a populated spreadsheet is safe.
func Bootstrap(ctx context.Context, store RowStore) error {
	layout := []struct {
		sheet   string
		headers []string
	}{
		{SheetProducts, ProductHeaders},
		{SheetOrders, OrderHeaders},
		{SheetInventoryLog, InventoryLogHeaders},
	}
	for _, l := range layout {
		if err := store.EnsureSheet(ctx, l.sheet, l.headers); err != nil {
			return errors.Wrapf(err, "ensure worksheet %s", l.sheet)
		}
	}
	return nil
}
