package sheets

import (
	"context"
	"fmt"
	"sync"
)

// Call records one invocation against a MemoryStore.
type Call struct {
	Op    string
	Range string
	Row   int
	Rows  [][]string
}

// MemoryStore is a Store kept entirely in process. Spreadsheets and tabs must
// be created with Seed before use; reading an unknown tab fails with
// ErrSheetNotFound like the remote store does. Every call is appended to Calls
// until StopRecording is called.
type MemoryStore struct {
	mu     sync.Mutex
	books  map[string]map[string][][]string
	Calls  []Call
	silent bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{books: make(map[string]map[string][][]string)}
}

// StopRecording drops the call log and stops keeping one. Long-running
// servers use it so the log does not grow with every request.
func (m *MemoryStore) StopRecording() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.silent = true
	m.Calls = nil
}

// record appends c to the call log. Callers hold m.mu.
func (m *MemoryStore) record(c Call) {
	if !m.silent {
		m.Calls = append(m.Calls, c)
	}
}

// Seed replaces the contents of a tab, creating it when missing.
func (m *MemoryStore) Seed(spreadsheetID, sheetName string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.books[spreadsheetID]
	if !ok {
		book = make(map[string][][]string)
		m.books[spreadsheetID] = book
	}
	grid := make([][]string, len(rows))
	for i, row := range rows {
		grid[i] = append([]string(nil), row...)
	}
	book[sheetName] = grid
}

// Rows returns a copy of a tab's raw grid, including empty rows.
func (m *MemoryStore) Rows(spreadsheetID, sheetName string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid := m.books[spreadsheetID][sheetName]
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// CallsFor returns the recorded calls with the given operation name.
func (m *MemoryStore) CallsFor(op string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (m *MemoryStore) grid(spreadsheetID, sheetName string) ([][]string, error) {
	book, ok := m.books[spreadsheetID]
	if !ok {
		return nil, fmt.Errorf("%w: spreadsheet %q", ErrSheetNotFound, spreadsheetID)
	}
	grid, ok := book[sheetName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheetName)
	}
	return grid, nil
}

func (m *MemoryStore) ReadRange(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := ParseRange(rng)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Op: "read", Range: rng})
	grid, err := m.grid(spreadsheetID, r.Sheet)
	if err != nil {
		return nil, err
	}
	return sliceRange(grid, r), nil
}

func (m *MemoryStore) AppendRow(ctx context.Context, spreadsheetID, sheetName string, row []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Op: "append", Range: SheetRange(sheetName), Rows: [][]string{append([]string(nil), row...)}})
	grid, err := m.grid(spreadsheetID, sheetName)
	if err != nil {
		return err
	}
	at := lastNonEmpty(grid) + 1
	if at < len(grid) {
		grid[at] = append([]string(nil), row...)
	} else {
		grid = append(grid, append([]string(nil), row...))
	}
	m.books[spreadsheetID][sheetName] = grid
	return nil
}

func (m *MemoryStore) WriteRange(ctx context.Context, spreadsheetID, rng string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := ParseRange(rng)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Op: "write", Range: rng, Rows: rows})
	grid, err := m.grid(spreadsheetID, r.Sheet)
	if err != nil {
		return err
	}
	startRow, startCol := max(r.StartRow, 1), max(r.StartCol, 1)
	for i, row := range rows {
		for j, v := range row {
			grid = setCell(grid, startRow+i, startCol+j, v)
		}
	}
	m.books[spreadsheetID][r.Sheet] = grid
	return nil
}

func (m *MemoryStore) ClearRange(ctx context.Context, spreadsheetID, rng string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := ParseRange(rng)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Op: "clear", Range: rng})
	grid, err := m.grid(spreadsheetID, r.Sheet)
	if err != nil {
		return err
	}
	endRow := r.EndRow
	if endRow == 0 || endRow > len(grid) {
		endRow = len(grid)
	}
	for row := max(r.StartRow, 1); row <= endRow; row++ {
		cells := grid[row-1]
		endCol := r.EndCol
		if endCol == 0 || endCol > len(cells) {
			endCol = len(cells)
		}
		for col := max(r.StartCol, 1); col <= endCol; col++ {
			cells[col-1] = ""
		}
	}
	return nil
}

func (m *MemoryStore) DeleteRow(ctx context.Context, spreadsheetID, sheetName string, row int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Op: "delete", Range: SheetRange(sheetName), Row: row})
	grid, err := m.grid(spreadsheetID, sheetName)
	if err != nil {
		return err
	}
	if row < 1 {
		return fmt.Errorf("%w: row %d", ErrInvalidRange, row)
	}
	if row > len(grid) {
		return nil
	}
	m.books[spreadsheetID][sheetName] = append(grid[:row-1], grid[row:]...)
	return nil
}

func setCell(grid [][]string, row, col int, v string) [][]string {
	for len(grid) < row {
		grid = append(grid, nil)
	}
	cells := grid[row-1]
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = v
	grid[row-1] = cells
	return grid
}
