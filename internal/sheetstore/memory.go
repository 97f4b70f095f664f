package sheetstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// MemoryStore implements RowStore over in-process slices. It backs every
// module test and serves as a degraded local mode when no spreadsheet
// credentials are configured.
type MemoryStore struct {
	mu     sync.RWMutex
	sheets map[string][][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sheets: make(map[string][][]string)}
}

func (m *MemoryStore) ReadAllRows(_ context.Context, sheet string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.sheets[sheet]
	if !ok {
		return nil, errors.Errorf("worksheet %q does not exist", sheet)
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (m *MemoryStore) ReadColumn(_ context.Context, sheet string, col int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.sheets[sheet]
	if !ok {
		return nil, errors.Errorf("worksheet %q does not exist", sheet)
	}
	if col < 1 {
		return nil, errors.Errorf("column %d out of range", col)
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if col <= len(r) {
			out = append(out, r[col-1])
		} else {
			out = append(out, "")
		}
	}
	return out, nil
}

func (m *MemoryStore) Headers(ctx context.Context, sheet string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.sheets[sheet]
	if !ok {
		return nil, errors.Errorf("worksheet %q does not exist", sheet)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return append([]string(nil), rows[0]...), nil
}

func (m *MemoryStore) UpdateCell(_ context.Context, sheet string, row, col int, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setCell(sheet, row, col, value)
}

func (m *MemoryStore) BatchUpdateCells(_ context.Context, sheet string, updates []CellUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range updates {
		if err := m.setCell(sheet, u.Row, u.Col, u.Value); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryStore) AppendRows(_ context.Context, sheet string, rows [][]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.sheets[sheet]
	if !ok {
		return errors.Errorf("worksheet %q does not exist", sheet)
	}
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, v := range r {
			cells[i] = fmt.Sprint(v)
		}
		existing = append(existing, cells)
	}
	m.sheets[sheet] = existing
	return nil
}

func (m *MemoryStore) EnsureSheet(_ context.Context, sheet string, headers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.sheets[sheet]
	if !ok || len(rows) == 0 {
		m.sheets[sheet] = [][]string{append([]string(nil), headers...)}
		return nil
	}
	idx := HeaderIndex(rows[0])
	for _, h := range headers {
		if _, exists := idx[NormalizeHeader(h)]; !exists {
			rows[0] = append(rows[0], h)
		}
	}
	m.sheets[sheet] = rows
	return nil
}

// setCell grows the sheet as needed; caller holds the write lock.
func (m *MemoryStore) setCell(sheet string, row, col int, value interface{}) error {
	rows, ok := m.sheets[sheet]
	if !ok {
		return errors.Errorf("worksheet %q does not exist", sheet)
	}
	if row < 1 || col < 1 {
		return errors.Errorf("cell (%d,%d) out of range", row, col)
	}
	for len(rows) < row {
		rows = append(rows, []string{})
	}
	for len(rows[row-1]) < col {
		rows[row-1] = append(rows[row-1], "")
	}
	rows[row-1][col-1] = fmt.Sprint(value)
	m.sheets[sheet] = rows
	return nil
}
