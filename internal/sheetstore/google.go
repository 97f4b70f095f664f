package sheetstore

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleStore implements RowStore against the Google Sheets v4 API. All
// values are read unformatted and written RAW so numbers and timestamps
// round-trip as the strings the repositories wrote.
type GoogleStore struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewGoogleStore builds a client from a service-account credentials file.
func NewGoogleStore(ctx context.Context, credentialsFile, spreadsheetID string) (*GoogleStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create sheets client")
	}
	return &GoogleStore{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (g *GoogleStore) ReadAllRows(ctx context.Context, sheet string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, sheet).
		Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "read worksheet %s", sheet)
	}
	return toStringGrid(resp.Values), nil
}

func (g *GoogleStore) ReadColumn(ctx context.Context, sheet string, col int) ([]string, error) {
	letter := colLetter(col)
	rng := fmt.Sprintf("%s!%s:%s", sheet, letter, letter)
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).
		Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "read column %s of %s", letter, sheet)
	}
	out := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) > 0 {
			out[i] = fmt.Sprint(row[0])
		}
	}
	return out, nil
}

func (g *GoogleStore) Headers(ctx context.Context, sheet string) ([]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, sheet+"!1:1").
		Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "read headers of %s", sheet)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return toStringGrid(resp.Values)[0], nil
}

func (g *GoogleStore) UpdateCell(ctx context.Context, sheet string, row, col int, value interface{}) error {
	rng := fmt.Sprintf("%s!%s", sheet, cellRef(row, col))
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, &sheets.ValueRange{
		Values: [][]interface{}{{value}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return errors.Wrapf(err, "update cell %s", rng)
}

// BatchUpdateCells carries every cell write in one HTTP round trip.
func (g *GoogleStore) BatchUpdateCells(ctx context.Context, sheet string, updates []CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	data := make([]*sheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s", sheet, cellRef(u.Row, u.Col)),
			Values: [][]interface{}{{u.Value}},
		})
	}
	_, err := g.svc.Spreadsheets.Values.BatchUpdate(g.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	return errors.Wrapf(err, "batch update %d cells in %s", len(updates), sheet)
}

func (g *GoogleStore) AppendRows(ctx context.Context, sheet string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, sheet+"!A1", &sheets.ValueRange{
		Values: rows,
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return errors.Wrapf(err, "append %d rows to %s", len(rows), sheet)
}

func (g *GoogleStore) EnsureSheet(ctx context.Context, sheet string, headers []string) error {
	meta, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return errors.Wrap(err, "read spreadsheet metadata")
	}
	exists := false
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == sheet {
			exists = true
			break
		}
	}

	if !exists {
		_, err = g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: sheet},
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return errors.Wrapf(err, "create worksheet %s", sheet)
		}
		row := make([]interface{}, len(headers))
		for i, h := range headers {
			row[i] = h
		}
		_, err = g.svc.Spreadsheets.Values.Update(g.spreadsheetID, sheet+"!1:1", &sheets.ValueRange{
			Values: [][]interface{}{row},
		}).ValueInputOption("RAW").Context(ctx).Do()
		return errors.Wrapf(err, "write headers of %s", sheet)
	}

	existing, err := g.Headers(ctx, sheet)
	if err != nil {
		return err
	}
	idx := HeaderIndex(existing)
	var missing []CellUpdate
	next := len(existing) + 1
	for _, h := range headers {
		if _, ok := idx[NormalizeHeader(h)]; ok {
			continue
		}
		missing = append(missing, CellUpdate{Row: 1, Col: next, Value: h})
		next++
	}
	if len(missing) == 0 {
		return nil
	}
	return g.BatchUpdateCells(ctx, sheet, missing)
}

func toStringGrid(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		out[i] = cells
	}
	return out
}

// colLetter converts a 1-based column index to its A1 letter(s).
func colLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}

// cellRef builds an A1 reference like "C12" from 1-based row and column.
func cellRef(row, col int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}
