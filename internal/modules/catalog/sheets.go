package catalog

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"sheetpos/internal/sheetstore"
)

type sheetsRepository struct {
	store sheetstore.RowStore
}

// NewSheetsRepository creates a product repository over the tabular store.
func NewSheetsRepository(store sheetstore.RowStore) Repository {
	return &sheetsRepository{store: store}
}

func (r *sheetsRepository) All(ctx context.Context) ([]Product, error) {
	rows, err := r.store.ReadAllRows(ctx, sheetstore.SheetProducts)
	if err != nil {
		return nil, errors.Wrap(err, "read products")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	idx := sheetstore.HeaderIndex(rows[0])
	products := make([]Product, 0, len(rows)-1)
	for _, row := range rows[1:] {
		p := Product{
			ID:          sheetstore.Cell(row, idx["id"]),
			Name:        sheetstore.Cell(row, idx["name"]),
			Price:       sheetstore.SafeFloat(sheetstore.Cell(row, idx["price"])),
			Stock:       sheetstore.SafeInt(sheetstore.Cell(row, idx["stock"])),
			Category:    sheetstore.Cell(row, idx["category"]),
			Description: sheetstore.Cell(row, idx["description"]),
			ImportPrice: sheetstore.SafeFloat(sheetstore.Cell(row, idx["import_price"])),
			CreatedAt:   sheetstore.Cell(row, idx["created_at"]),
			UpdatedAt:   sheetstore.Cell(row, idx["updated_at"]),
		}
		// A row without an identifier or a name is junk, not a product.
		if p.ID == "" || p.Name == "" {
			continue
		}
		if p.Category == "" {
			p.Category = "General"
		}
		if p.Stock < 0 {
			p.Stock = 0
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *sheetsRepository) Append(ctx context.Context, p *Product) error {
	headers, err := r.store.Headers(ctx, sheetstore.SheetProducts)
	if err != nil {
		return errors.Wrap(err, "read product headers")
	}
	idx := sheetstore.HeaderIndex(headers)

	row := make([]interface{}, len(headers))
	for i := range row {
		row[i] = ""
	}
	set := func(header string, v interface{}) {
		if col, ok := idx[header]; ok {
			row[col-1] = v
		}
	}
	set("id", p.ID)
	set("name", p.Name)
	set("price", p.Price)
	set("stock", p.Stock)
	set("category", p.Category)
	set("description", p.Description)
	set("import_price", p.ImportPrice)
	set("created_at", p.CreatedAt)
	set("updated_at", p.UpdatedAt)

	if err := r.store.AppendRows(ctx, sheetstore.SheetProducts, [][]interface{}{row}); err != nil {
		return errors.Wrap(err, "append product")
	}
	return nil
}

func (r *sheetsRepository) UpdateFields(ctx context.Context, id string, upd UpdateProductRequest) error {
	// Older spreadsheets may predate the Import_Price column; adding it is
	// idempotent and never touches data rows.
	if upd.ImportPrice != nil {
		if err := r.store.EnsureSheet(ctx, sheetstore.SheetProducts, sheetstore.ProductHeaders); err != nil {
			return errors.Wrap(err, "ensure product columns")
		}
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
	column, err := r.store.ReadColumn(ctx, sheetstore.SheetProducts, idCol)
	if err != nil {
		return errors.Wrap(err, "read product ID column")
	}
	rowNum, ok := sheetstore.RowLookup(column)[id]
	if !ok {
		return errors.Errorf("product %s has no row", id)
	}

	var updates []sheetstore.CellUpdate
	stage := func(header string, v interface{}) {
		if col, ok := idx[header]; ok {
			updates = append(updates, sheetstore.CellUpdate{Row: rowNum, Col: col, Value: v})
		}
	}
	if upd.Name != nil {
		stage("name", *upd.Name)
	}
	if upd.Price != nil {
		stage("price", *upd.Price)
	}
	if upd.Category != nil {
		stage("category", *upd.Category)
	}
	if upd.Description != nil {
		stage("description", *upd.Description)
	}
	if upd.ImportPrice != nil {
		stage("import_price", *upd.ImportPrice)
	}
	stage("updated_at", time.Now().UTC().Format(time.RFC3339))

	if err := r.store.BatchUpdateCells(ctx, sheetstore.SheetProducts, updates); err != nil {
		return errors.Wrapf(err, "update product %s", id)
	}
	return nil
}
